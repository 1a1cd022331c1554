package core

import (
	"context"
	"path/filepath"
	"time"
)

// NewAutonameStep builds the autoname task (spec §4.2): for a token whose
// parsed_timestamp is present, compose the canonical destination filename
// directly; otherwise apply the backfill policy, which requires the
// ascending-order delivery reorder guarantees. State is a single "last
// known timestamp and duration" carried across calls in arrival order,
// which is exactly what reorder's ordering invariant buys this step.
//
// Backfill only considers the single nearest prior token: its timestamp
// (parsed, backfilled or fallback) plus its duration. A run of several
// consecutive unrecognized files is therefore chained end to end from the
// last known start; no interpolation toward a later recognized timestamp
// is done. fallback_timestamp is used only when no prior token exists.
func NewAutonameStep(env *Env) func(ctx context.Context, s *Stepper) error {
	var havePrior bool
	var priorEnd time.Time

	return func(ctx context.Context, s *Stepper) error {
		return s.Walk(ctx, func(ctx context.Context, t Token) error {
			entry := env.Worklist.Get(t)
			ai := entry.AudioInfo

			var ts time.Time
			switch {
			case ai != nil && ai.ParsedTimestamp != nil:
				ts = *ai.ParsedTimestamp
			case havePrior:
				ts = priorEnd
			default:
				fallback, err := resolveFallbackTimestamp(env.Config, entry.SourceWAV)
				if err != nil {
					return err
				}
				ts = fallback
			}

			duration := time.Duration(0)
			if ai != nil && ai.DurationS != nil {
				duration = time.Duration(*ai.DurationS * float64(time.Second))
			}

			var notes []string
			if ai != nil && ai.ParsedTimestamp != nil {
				notes = ai.ExtraSpeech
			}

			entry.Timestamp = ts
			entry.FnameGuess = DestFilename(env.Config.Prefix, ts, notes, duration, env.Config.Instrument, OrigStem(entry.SourceWAV),
				env.Config.DatestampLayoutMinute, env.Config.DatestampLayoutSecond)

			havePrior = true
			priorEnd = ts.Add(duration)

			if !env.NoAct {
				if err := saveTextSidecar(filepath.Join(entry.WavProgressDir, ".filename_guess"), entry.FnameGuess); err != nil {
					return err
				}
			}
			env.Log().ZeroLog().Debug().Str("wav", entry.SourceWAV).Str("guess", entry.FnameGuess).
				Str("duration", FormatDuration(duration)).
				Msg("autoname: composed guess")
			return nil
		})
	}
}

// resolveFallbackTimestamp implements --fallback-timestamp's value space
// (spec §6): now, mtime/ctime/atime of the source WAV, or a literal
// timestamp in ParseFallbackTimestampLiteral's format.
func resolveFallbackTimestamp(cfg Config, sourceWAV string) (time.Time, error) {
	switch cfg.FallbackTimestamp {
	case "now":
		return time.Now(), nil
	case "mtime", "ctime", "atime":
		mtime, ctime, atime, err := statTimes(sourceWAV)
		if err != nil {
			return time.Time{}, err
		}
		switch cfg.FallbackTimestamp {
		case "mtime":
			return mtime, nil
		case "ctime":
			return ctime, nil
		default:
			return atime, nil
		}
	default:
		return ParseFallbackTimestampLiteral(cfg.FallbackTimestamp)
	}
}
