package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diffusor/talkytime/internal/toolrunner"
)

// flacWorkingPath is the working FLAC path flacenc writes to inside a
// file's progress directory before pargen renames it into its final,
// confirmed name in dest_dir (spec §3's run layout only names the
// interrupted-rollback file explicitly; the working copy sits alongside
// it under the same directory).
func flacWorkingPath(entry *Entry) string {
	return filepath.Join(entry.WavProgressDir, OrigStem(entry.SourceWAV)+".flac")
}

// NewFlacencStep builds the flacenc task (spec §4.2): encodes the source
// WAV to FLAC with a replay-gain pass, emitting the token to both pargen
// and xdelta on success. Resumable: if a working FLAC from a prior run is
// present and a verification xdelta already exists alongside it, the
// encode is trusted and skipped outright (mirrors listen's
// .audioinfo.json caching). A stale, unverified working FLAC is rolled
// back to an ".interrupted-abandoned" name before re-encoding so a partial
// write is preserved as forensic evidence instead of silently overwritten
// (spec §3 run layout, §9 supplemented feature from original_source's
// interrupted_flac_fmt).
func NewFlacencStep(env *Env) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		return s.Walk(ctx, func(ctx context.Context, t Token) error {
			entry := env.Worklist.Get(t)
			working := flacWorkingPath(entry)
			xdeltaPath := filepath.Join(entry.WavProgressDir, ".xdelta")

			if fileExists(working) && fileExists(xdeltaPath) {
				entry.FlacPath = working
				env.Log().ZeroLog().Debug().Str("wav", entry.SourceWAV).Msg("flacenc: reusing verified encode")
				return nil
			}

			if env.NoAct {
				entry.FlacPath = working
				return nil
			}

			if fileExists(working) {
				if err := rollbackInterrupted(working, env); err != nil {
					return err
				}
			}

			if _, err := toolrunner.Must(ctx, "flac_encode", "", map[string]string{
				"input":  entry.SourceWAV,
				"output": working,
			}); err != nil {
				return err
			}

			entry.FlacPath = working
			env.Log().ZeroLog().Debug().Str("wav", entry.SourceWAV).Str("flac", working).Msg("flacenc: encoded")
			return nil
		})
	}
}

// rollbackInterrupted renames an existing, unverified working FLAC aside
// as ".interrupted-abandoned.<ts>.flac" so a fresh encode never silently
// clobbers partial work from an earlier, interrupted run.
func rollbackInterrupted(working string, env *Env) error {
	dir := filepath.Dir(working)
	ts := time.Now().Format("20060102-150405.000000000")
	abandoned := filepath.Join(dir, fmt.Sprintf(".interrupted-abandoned.%s.flac", ts))
	env.Log().ZeroLog().Warn().Str("from", working).Str("to", abandoned).
		Msg("flacenc: rolling back unverified partial encode")
	return os.Rename(working, abandoned)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
