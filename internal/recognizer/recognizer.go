// Package recognizer narrows the core's dependency on speech recognition
// to the single contract spec §1 keeps in scope: "wave-file + offset +
// duration -> string-or-nothing". The recognition library itself is an
// out-of-scope external collaborator; this package only shells out to a
// configured binary and parses its stdout.
package recognizer

import (
	"context"
	"strconv"
	"strings"

	"github.com/diffusor/talkytime/internal/toolrunner"
)

// Recognizer is the narrow interface listen depends on.
type Recognizer interface {
	// Recognize returns the transcript for the span [startS, startS+durationS)
	// of wavPath, or "" if nothing was recognized.
	Recognize(ctx context.Context, wavPath string, startS, durationS float64) (string, error)
}

// ExternalBinary invokes a configured speech-to-text binary as a
// subprocess per call, keeping recognition fully out-of-process (spec §1
// Non-goals: "no streaming I/O to the audio recognizer").
type ExternalBinary struct {
	Bin string
}

func (e ExternalBinary) Recognize(ctx context.Context, wavPath string, startS, durationS float64) (string, error) {
	if e.Bin == "" {
		return "", nil
	}
	params := map[string]string{
		"input":    wavPath,
		"offset":   strconv.FormatFloat(startS, 'f', -1, 64),
		"duration": strconv.FormatFloat(durationS, 'f', -1, 64),
	}
	res, err := toolrunner.Must(ctx, "recognize", e.Bin, params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// NullRecognizer always returns no transcript, used when
// --skip-speech-to-text is set (spec §6): every file falls back to
// fallback_timestamp.
type NullRecognizer struct{}

func (NullRecognizer) Recognize(ctx context.Context, wavPath string, startS, durationS float64) (string, error) {
	return "", nil
}
