// Package silence finds the first likely-speech span near the start of a
// recording by inverting ffmpeg's silencedetect output (spec §4.3).
package silence

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/diffusor/talkytime/internal/domainerr"
	"github.com/diffusor/talkytime/internal/toolrunner"
)

var (
	startRe = regexp.MustCompile(`silence_start:\s*([0-9.]+)`)
	endRe   = regexp.MustCompile(`silence_end:\s*([0-9.]+)`)
)

// SpeechRange names the audio span the recognizer was pointed at, in
// seconds from the start of the source WAV (spec §3).
type SpeechRange struct {
	StartS    float64
	DurationS float64
}

type interval struct{ start, end float64 }

// Params collects the span-finding policy's tunables (spec §4.3), sourced
// from core.Config so a single struct holds every tunable rather than
// leaving the collaborator with its own hardcoded copies.
type Params struct {
	ThresholdDB  float64
	MinDurationS float64
	MinSpanS     float64
	AttackS      float64
	ReleaseS     float64
	CapS         float64

	// EpsilonS tolerates ffmpeg's silence_end timestamps landing a hair
	// short of scanCapS (floating-point jitter in its own duration
	// accounting), so a fully-silent scan doesn't spuriously register a
	// trailing non-silent sliver at the cap edge.
	EpsilonS float64
}

// FindLikelySpeechSpan invokes the silence detector over the whole of path,
// inverts its silent intervals against [0, scanCapS], and returns the
// first non-silent span at least
// p.MinSpanS long, widened by p.AttackS/p.ReleaseS and capped at p.CapS
// total.
func FindLikelySpeechSpan(ctx context.Context, path string, scanCapS float64, p Params) (SpeechRange, error) {
	res, err := toolrunner.Run(ctx, "silencedetect", "", map[string]string{
		"input":          path,
		"threshold_db":   strconv.FormatFloat(p.ThresholdDB, 'f', -1, 64),
		"min_duration_s": strconv.FormatFloat(p.MinDurationS, 'f', -1, 64),
	})
	if err != nil {
		return SpeechRange{}, err
	}

	starts := startRe.FindAllStringSubmatch(res.Stderr, -1)
	ends := endRe.FindAllStringSubmatch(res.Stderr, -1)

	silent := make([]interval, 0, len(starts))
	for i := range starts {
		s, serr := strconv.ParseFloat(starts[i][1], 64)
		if serr != nil {
			continue
		}
		e := scanCapS
		if i < len(ends) {
			if parsed, eerr := strconv.ParseFloat(ends[i][1], 64); eerr == nil {
				e = parsed
			}
		}
		silent = append(silent, interval{start: s, end: e})
	}

	nonSilent := invert(silent, scanCapS, p.EpsilonS)
	for _, span := range nonSilent {
		dur := span.end - span.start
		if dur < p.MinSpanS {
			continue
		}
		start := span.start - p.AttackS
		if start < 0 {
			start = 0
		}
		end := span.end + p.ReleaseS
		if end > scanCapS {
			end = scanCapS
		}
		if end-start > p.CapS {
			end = start + p.CapS
		}
		return SpeechRange{StartS: start, DurationS: end - start}, nil
	}
	return SpeechRange{}, domainerr.ErrNoSuitableAudioSpan("no non-silent span >= %.1fs found within first %.1fs of %s", p.MinSpanS, scanCapS, path)
}

// invert produces the complement of silent (assumed sorted by start,
// non-overlapping) within [0, cap]. A cursor landing within epsilon of cap
// is treated as having reached it, so reporting jitter in the last
// silence_end doesn't register a spurious trailing sliver.
func invert(silent []interval, cap, epsilon float64) []interval {
	var out []interval
	cursor := 0.0
	for _, iv := range silent {
		if iv.start > cursor {
			out = append(out, interval{start: cursor, end: iv.start})
		}
		if iv.end > cursor {
			cursor = iv.end
		}
	}
	if cursor < cap-epsilon {
		out = append(out, interval{start: cursor, end: cap})
	}
	return out
}

func (iv interval) String() string { return fmt.Sprintf("[%.2f,%.2f)", iv.start, iv.end) }
