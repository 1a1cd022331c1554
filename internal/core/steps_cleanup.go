package core

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/diffusor/talkytime/internal/cacheflush"
	"github.com/diffusor/talkytime/internal/fec"
)

// NewCleanupStep builds the cleanup task (spec §4.2, invariant 6): the only
// writer allowed to remove source files, invoked for a token only once both
// pargen (data) and xdelta (sync) have emitted it (invariant 4, resolved in
// DESIGN.md as two ordinary token queues rather than a literal data/sync
// split, since Stepper.Get's k>=2 cross-sync already delivers exactly that
// guarantee). Flushes the archive from the page cache and re-verifies its
// PAR2 coverage immediately before unlinking the source (spec §9 design
// note), then — unless configured otherwise — copies the archive back next
// to the source and deletes the source WAV, strictly in that order (spec §9
// open question (b)).
func NewCleanupStep(env *Env) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		return s.Walk(ctx, func(ctx context.Context, t Token) error {
			entry := env.Worklist.Get(t)

			if env.NoAct {
				return nil
			}

			if err := cacheflush.Flush(entry.FlacPath); err != nil {
				return err
			}
			if len(entry.ParPaths) == 0 {
				return ErrMissingPar2File("cleanup: no par2 volumes recorded for %s", entry.FlacPath)
			}
			if err := fec.Verify(ctx, entry.ParPaths[0]); err != nil {
				return err
			}

			if !env.Config.SkipCopyback {
				srcDir := filepath.Dir(entry.SourceWAV)
				if err := copyArchiveBack(entry, srcDir); err != nil {
					return err
				}
			}

			if !env.Config.KeepWavs {
				if err := os.Remove(entry.SourceLink); err != nil && !os.IsNotExist(err) {
					return err
				}
				if err := os.Remove(entry.SourceWAV); err != nil && !os.IsNotExist(err) {
					return err
				}
			}

			env.Progress.Increment()
			env.Log().ZeroLog().Info().Str("wav", entry.SourceWAV).Str("archive", entry.FlacPath).Msg("cleanup: finished")
			return nil
		})
	}
}

// copyArchiveBack copies the final FLAC and its PAR2 volumes into destDir,
// alongside the original source recording, preserving the full recoverable
// archive set rather than the compressed audio alone.
func copyArchiveBack(entry *Entry, destDir string) error {
	paths := append([]string{entry.FlacPath}, entry.ParPaths...)
	for _, p := range paths {
		if err := copyFile(p, filepath.Join(destDir, filepath.Base(p))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
