package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m30s"},
		{time.Hour, "1h"},
		{time.Hour + 30*time.Minute, "1h30m"},
		{2*time.Hour + 5*time.Second, "2h5s"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatDuration(c.d))
	}
}

func TestDestFilename_SecondsZeroOmitsSeconds(t *testing.T) {
	ts := time.Date(2021, time.May, 19, 19, 38, 0, 0, time.UTC)
	got := DestFilename("piano", ts, nil, 90*time.Second, "yamaha", "rec001", "20060102-1504", "20060102-150405")
	assert.Equal(t, "piano.20210519-1938-wed.1m30s.yamaha.rec001.flac", got)
}

func TestDestFilename_NonzeroSecondsIncluded(t *testing.T) {
	ts := time.Date(1900, time.January, 1, 7, 5, 42, 0, time.UTC)
	got := DestFilename("piano", ts, []string{"test", "tone"}, 0, "yamaha", "rec002", "20060102-1504", "20060102-150405")
	assert.Equal(t, "piano.19000101-070542-mon.test-tone.0s.yamaha.rec002.flac", got)
}

func TestOrigStem(t *testing.T) {
	assert.Equal(t, "rec001", OrigStem("/mnt/recorder/rec001.WAV"))
	assert.Equal(t, "rec001", OrigStem("rec001.wav"))
}

func TestParseFallbackTimestampLiteral(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"date only", "20210519", time.Date(2021, 5, 19, 0, 0, 0, 0, time.UTC)},
		{"date and HHMM", "20210519-1938", time.Date(2021, 5, 19, 19, 38, 0, 0, time.UTC)},
		{"date and HHMMSS", "20210519-193845", time.Date(2021, 5, 19, 19, 38, 45, 0, time.UTC)},
		{"trailing weekday ignored", "20210519-1938-wed", time.Date(2021, 5, 19, 19, 38, 0, 0, time.UTC)},
		{"underscore separators", "20210519_1938", time.Date(2021, 5, 19, 19, 38, 0, 0, time.UTC)},
		{"space separator", "20210519 1938", time.Date(2021, 5, 19, 19, 38, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseFallbackTimestampLiteral(c.in)
			require.NoError(t, err)
			assert.True(t, c.want.Equal(got))
		})
	}
}

func TestParseFallbackTimestampLiteral_RejectsBadDate(t *testing.T) {
	_, err := ParseFallbackTimestampLiteral("2021519")
	assert.Error(t, err)
}

func TestParseFallbackTimestampLiteral_RejectsBadTimeLength(t *testing.T) {
	_, err := ParseFallbackTimestampLiteral("20210519-19")
	assert.Error(t, err)
}
