package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Scenarios S1-S3 (spec §8): fixed transcripts with known canonical
// results, including the recognizer confusions ("oh" for "zero") and
// trailing notes left over after the date phrase.
func TestParse_Scenarios(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		want       string
		wantExtra  []string
	}{
		{
			name:       "S1",
			transcript: "nineteen thirty eight wednesday may nineteenth two thousand and twenty one",
			want:       "20210519-193800",
		},
		{
			name:       "S2",
			transcript: "seven oh five and forty two seconds friday january first nineteen hundred test tone",
			want:       "19000101-070542",
			wantExtra:  []string{"test", "tone"},
		},
		{
			name:       "S3",
			transcript: "twelve hundred tuesday march third two thousand",
			want:       "20000303-120000",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := Parse(c.transcript)
			require.NoError(t, err)
			assert.Equal(t, c.want, CanonicalLiteral(result.DateTime))
			if c.wantExtra != nil {
				assert.Equal(t, c.wantExtra, result.Extra)
			}
		})
	}
}

func TestParse_WeekdayMismatchWarns(t *testing.T) {
	// May 19 2021 is actually a Wednesday; claiming Monday must warn but
	// still parse the date as stated.
	result, err := Parse("nineteen thirty eight monday may nineteenth two thousand and twenty one")
	require.NoError(t, err)
	assert.True(t, result.WeekdayWarning)
	assert.Equal(t, "20210519-193800", CanonicalLiteral(result.DateTime))
}

func TestParse_RejectsGarbledDayOfMonth(t *testing.T) {
	_, err := Parse("twelve hundred march march third two thousand")
	assert.Error(t, err)
}

func TestParse_RejectsYearOutOfRange(t *testing.T) {
	_, err := Parse("twelve hundred tuesday march third one thousand")
	assert.Error(t, err)
}

// TestCanonicalLiteral_Idempotent exercises invariant 7's formatting half:
// CanonicalLiteral always yields a fixed-width YYYYMMDD-HHMMSS literal that
// reformatting the same instant reproduces byte for byte.
func TestCanonicalLiteral_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		year := rapid.IntRange(1900, 2999).Draw(rt, "year")
		month := rapid.IntRange(1, 12).Draw(rt, "month")
		day := rapid.IntRange(1, 28).Draw(rt, "day") // always valid regardless of month
		hour := rapid.IntRange(0, 23).Draw(rt, "hour")
		min := rapid.IntRange(0, 59).Draw(rt, "min")
		sec := rapid.IntRange(0, 59).Draw(rt, "sec")

		dt := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
		lit := CanonicalLiteral(dt)
		assert.Len(rt, lit, len("20060102-150405"))
		assert.Equal(rt, lit, CanonicalLiteral(dt))

		reparsed, err := time.Parse("20060102-150405", lit)
		assert.NoError(rt, err)
		assert.True(rt, dt.Equal(reparsed))
	})
}
