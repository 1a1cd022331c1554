package core

import (
	"context"
	"os"
	"path/filepath"
)

// NewSetupStep builds the setup task (spec §4.2): for each validated
// source WAV it creates (or accepts, on resume) the per-file progress
// subdirectory and its .source.wav symlink, appends a worklist entry, and
// emits the new token to every downstream branch. Each token is sent as
// soon as its entry exists, so downstream steps start work while setup
// goes on enumerating; there is no explicit yield.
func NewSetupStep(env *Env, sourceWAVs []string, destDir, runID string) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		for _, wav := range sourceWAVs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			progressDir := WavProgressDir(destDir, runID, wav)
			if !env.NoAct {
				if err := os.MkdirAll(progressDir, 0o755); err != nil {
					return err
				}
			}
			sourceLink := filepath.Join(progressDir, ".source.wav")
			if !env.NoAct {
				if _, err := os.Lstat(sourceLink); os.IsNotExist(err) {
					if err := os.Symlink(wav, sourceLink); err != nil {
						return err
					}
				}
			}

			entry := &Entry{
				SourceWAV:      wav,
				DestDir:        destDir,
				WavProgressDir: progressDir,
				SourceLink:     sourceLink,
			}
			t := env.Worklist.Append(entry)
			env.Log().ZeroLog().Debug().Str("wav", wav).Int("token", int(t)).Msg("setup: enumerated source")

			s.Put(t)
		}
		s.Put(EndToken)
		return nil
	}
}
