package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FormatDuration renders a duration the way the destination filename's
// duration segment does (spec §6): only non-zero units appear, largest
// first, and a duration of exactly zero renders as "0s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%dh", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dm", m)
	}
	if s > 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%ds", s)
	}
	return b.String()
}

// DestFilename composes the canonical archive name (spec §6):
//
//	{prefix}.{datestamp}.{notes}{duration}.{instrument}.{orig_stem}.flac
//
// datestamp is ts formatted with layoutMinute-aaa when the parsed second is
// zero, else layoutSecond-aaa (aaa being the lowercase three-letter weekday
// abbreviation, which disambiguates an otherwise bare timestamp at a
// glance; layoutMinute/layoutSecond come from Config.DatestampLayoutMinute/
// Second — "20060102-1504"/"20060102-150405" by default). notes is the
// hyphen-joined extra words plus a trailing '.', or empty when there are
// none.
func DestFilename(prefix string, ts time.Time, notes []string, duration time.Duration, instrument, origStem, layoutMinute, layoutSecond string) string {
	var datestamp string
	weekday := strings.ToLower(ts.Weekday().String())[:3]
	if ts.Second() == 0 {
		datestamp = fmt.Sprintf("%s-%s", ts.Format(layoutMinute), weekday)
	} else {
		datestamp = fmt.Sprintf("%s-%s", ts.Format(layoutSecond), weekday)
	}

	notesPart := ""
	if len(notes) > 0 {
		notesPart = strings.Join(notes, "-") + "."
	}

	return fmt.Sprintf("%s.%s.%s%s.%s.%s.flac",
		prefix, datestamp, notesPart, FormatDuration(duration), instrument, origStem)
}

// OrigStem returns the source WAV's basename with its extension removed,
// the {orig_stem} component of DestFilename.
func OrigStem(sourceWAV string) string {
	base := filepath.Base(sourceWAV)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFallbackTimestampLiteral parses the --fallback-timestamp literal
// format (spec §6): YYYYmmdd[-HHMM[SS]][-aaa], with '_' or a single space
// accepted as separators in place of '-'. An optional trailing
// three-letter weekday abbreviation is accepted and dropped; it is not
// compared against the weekday of the parsed date.
func ParseFallbackTimestampLiteral(s string) (time.Time, error) {
	norm := strings.Map(func(r rune) rune {
		if r == '_' || r == ' ' {
			return '-'
		}
		return r
	}, s)
	parts := strings.Split(norm, "-")

	if len(parts) == 0 || len(parts[0]) != 8 {
		return time.Time{}, ErrTimestampGrok("fallback timestamp literal %q: expected YYYYmmdd date component", s)
	}
	datePart := parts[0]
	rest := parts[1:]

	// Drop a trailing weekday abbreviation if present (3 letters, non-numeric).
	if n := len(rest); n > 0 && len(rest[n-1]) == 3 && !isDigits(rest[n-1]) {
		rest = rest[:n-1]
	}

	timePart := "0000"
	if len(rest) > 0 {
		timePart = rest[0]
	}
	switch len(timePart) {
	case 4, 6:
	default:
		return time.Time{}, ErrTimestampGrok("fallback timestamp literal %q: time component must be HHMM or HHMMSS", s)
	}

	layout := "20060102" + map[int]string{4: "1504", 6: "150405"}[len(timePart)]
	ts, err := time.Parse(layout, datePart+timePart)
	if err != nil {
		return time.Time{}, ErrTimestampGrok("fallback timestamp literal %q: %v", s, err)
	}
	return ts, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
