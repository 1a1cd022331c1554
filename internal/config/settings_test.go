package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_SeedsDefaultsOnFirstRun(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, InitConfig(customPath))

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "piano", settings.Prefix)
	assert.Equal(t, "now", settings.FallbackTimestamp)
	assert.Equal(t, 6, settings.NumListenerTasks)
	assert.Equal(t, 2, settings.FECVolumes)
	assert.InDelta(t, 5.0, settings.FECRedundancyPct, 1e-9)
	assert.False(t, settings.KeepWavs)
	assert.False(t, settings.SkipCopyback)
}

func TestSaveSettings_RoundTrips(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, InitConfig(customPath))

	want := Settings{
		Prefix:            "cello",
		Instrument:        "yamaha-u1",
		FallbackTimestamp: "mtime",
		NumListenerTasks:  3,
		FECVolumes:        4,
		FECRedundancyPct:  10.0,
		KeepWavs:          true,
		SkipCopyback:      true,
	}
	require.NoError(t, SaveSettings(want))

	got, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
