package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

// TestAudioInfoRoundTrip exercises spec §8 invariant 6: any AudioInfo
// serialized to the progress sidecar reloads to an equal value, modulo
// nanosecond truncation in the datetime (the tagged schema stores Unix
// seconds only).
func TestAudioInfoRoundTrip(t *testing.T) {
	ts := time.Date(2021, time.May, 19, 19, 38, 0, 0, time.UTC)
	original := &AudioInfo{
		DurationS: f64Ptr(1234.5),
		SpeechRange: &SpeechRange{
			StartS:    2.0,
			DurationS: 4.25,
		},
		RecognizedSpeech: strPtr("nineteen thirty eight wednesday may nineteenth two thousand and twenty one"),
		ParsedTimestamp:  &ts,
		ExtraSpeech:      []string{"test tone"},
	}

	data, err := MarshalAudioInfo(original)
	require.NoError(t, err)

	got, err := UnmarshalAudioInfo(data)
	require.NoError(t, err)

	assert.Equal(t, original.DurationS, got.DurationS)
	assert.Equal(t, original.SpeechRange, got.SpeechRange)
	assert.Equal(t, original.RecognizedSpeech, got.RecognizedSpeech)
	assert.Equal(t, original.ExtraSpeech, got.ExtraSpeech)
	require.NotNil(t, got.ParsedTimestamp)
	assert.True(t, original.ParsedTimestamp.Equal(*got.ParsedTimestamp))
}

// TestAudioInfoRoundTrip_AllFieldsOmitted covers the all-nil case: a file
// whose intro carried no usable speech still round-trips to a bare record.
func TestAudioInfoRoundTrip_AllFieldsOmitted(t *testing.T) {
	original := &AudioInfo{}

	data, err := MarshalAudioInfo(original)
	require.NoError(t, err)

	got, err := UnmarshalAudioInfo(data)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestUnmarshalAudioInfo_RejectsWrongDataclass(t *testing.T) {
	_, err := UnmarshalAudioInfo([]byte(`{"__dataclass__": "NotAudioInfo"}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, "InvalidProgressFile"))
}

func TestUnmarshalAudioInfo_RejectsMalformedJSON(t *testing.T) {
	_, err := UnmarshalAudioInfo([]byte(`not json`))
	require.Error(t, err)
}
