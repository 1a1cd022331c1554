package core

import (
	"os"
	"strings"
)

// Plain-text progress sidecars (spec §3): unlike AudioInfo, the filename
// guess and operator-confirmed name are single strings with no schema to
// discriminate, so they round-trip as trimmed UTF-8 rather than JSON.

func saveTextSidecar(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}

func loadTextSidecar(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
