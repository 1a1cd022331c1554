package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/diffusor/talkytime/internal/fec"
)

// NewPargenStep builds the pargen task (spec §4.2): waits for both flacenc's
// working FLAC and prompt's confirmed name, renames the encode into its
// final dest_dir path, and generates covering PAR2 volumes sized per
// fec.BlockSize. Resumable for scenario S7: an existing set of volumes
// alongside the renamed archive is trusted only once fec.Verify confirms
// it actually covers the archive; a partial or corrupt set (e.g. S7's
// "delete the final .par2") fails verification and is regenerated from
// scratch, rather than being silently reused.
func NewPargenStep(env *Env) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		return s.Walk(ctx, func(ctx context.Context, t Token) error {
			entry := env.Worklist.Get(t)

			final := filepath.Join(entry.DestDir, entry.FnamePrompted)

			if !fileExists(final) {
				if env.NoAct {
					entry.ParPaths = nil
					return nil
				}
				if err := os.Rename(entry.FlacPath, final); err != nil {
					return err
				}
				entry.FlacPath = final
			} else {
				entry.FlacPath = final
			}

			existing := existingPar2Volumes(final)
			if len(existing) > 0 {
				if err := fec.Verify(ctx, existing[0]); err == nil {
					entry.ParPaths = existing
					env.Log().ZeroLog().Debug().Str("archive", final).Msg("pargen: reusing existing par2 volumes")
					return nil
				}
				env.Log().ZeroLog().Warn().Str("archive", final).
					Msg("pargen: existing par2 volumes failed verification (set incomplete or corrupt), regenerating")
			}
			if env.NoAct {
				return nil
			}
			for _, v := range existing {
				_ = os.Remove(v)
			}

			vols, err := fec.Create(ctx, final, env.Config.FECVolumes, env.Config.FECRedundancyPct, env.Config.FECBlockAlign)
			if err != nil {
				return err
			}
			entry.ParPaths = vols

			var parBytes int64
			for _, v := range vols {
				if info, err := os.Stat(v); err == nil {
					parBytes += info.Size()
				}
			}
			env.Log().ZeroLog().Debug().Str("archive", final).Int("volumes", len(vols)).
				Str("recovery_size", humanize.Bytes(uint64(parBytes))).
				Msg("pargen: generated par2 volumes")
			return nil
		})
	}
}

// existingPar2Volumes lists par2 volume files already present alongside
// final (matching final's basename plus a ".par2" suffix), letting pargen
// skip regeneration when resuming a run interrupted after volume creation.
func existingPar2Volumes(final string) []string {
	dir := filepath.Dir(final)
	base := filepath.Base(final)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var vols []string
	for _, e := range entries {
		name := e.Name()
		if len(name) > len(base) && name[:len(base)] == base && filepath.Ext(name) == ".par2" {
			vols = append(vols, filepath.Join(dir, name))
		}
	}
	return vols
}
