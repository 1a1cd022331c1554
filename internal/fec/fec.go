// Package fec computes PAR2 block sizes and drives the par2 tool (spec
// §4.5).
package fec

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/diffusor/talkytime/internal/domainerr"
	"github.com/diffusor/talkytime/internal/toolrunner"
)

// defaultBlockAlign is the block-size alignment and floor BlockSize falls
// back to when called with align <= 0 (spec §4.5's "4096" is both the
// alignment and the floor).
const defaultBlockAlign int64 = 4096

// BlockSize computes the PAR2 block size for a file of size bytes given
// volumes and redundancyPct, aligned to (and floored at) align (spec §4.5):
//
//	total = size*volumes*redundancyPct/100
//	min_block = total/10000
//	block = ceil(min_block/align)*align, floored at align
func BlockSize(size int64, volumes int, redundancyPct float64, align int64) int64 {
	if align <= 0 {
		align = defaultBlockAlign
	}
	total := float64(size) * float64(volumes) * redundancyPct / 100
	minBlock := total / 10000
	block := int64(math.Ceil(minBlock/float64(align))) * align
	if block < align {
		block = align
	}
	return block
}

// Create generates PAR2 recovery volumes for target with the given
// volumes/redundancyPct, sizing the block per BlockSize (aligned to align),
// and removes the redundant aggregate .par2 file par2 leaves alongside the
// volNN+MM files on success. Returns the paths of the remaining .par2
// volume files.
func Create(ctx context.Context, target string, volumes int, redundancyPct float64, align int64) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	block := BlockSize(info.Size(), volumes, redundancyPct, align)

	_, err = toolrunner.Must(ctx, "par2_create", "", map[string]string{
		"block":  strconv.FormatInt(block, 10),
		"pct":    strconv.FormatFloat(redundancyPct, 'f', -1, 64),
		"vols":   strconv.Itoa(volumes),
		"target": target,
	})
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(target)
	base := filepath.Base(target)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	aggregate := base + ".par2"
	var vols []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base+".") || !strings.HasSuffix(name, ".par2") {
			continue
		}
		if name == aggregate {
			_ = os.Remove(filepath.Join(dir, name))
			continue
		}
		vols = append(vols, filepath.Join(dir, name))
	}
	if len(vols) == 0 {
		return nil, domainerr.ErrMissingPar2File("par2 create produced no volume files for %s", target)
	}
	return vols, nil
}

// Verify checks that target's covering PAR2 volume(s) validate against
// the file on disk.
func Verify(ctx context.Context, coveringPar2 string) error {
	res, err := toolrunner.Run(ctx, "par2_verify", "", map[string]string{"par2": coveringPar2})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return domainerr.ErrMissingPar2File("par2 verify failed for %s: %s", coveringPar2, res.Stdout)
	}
	return nil
}

// Repair attempts to reconstruct the target file from its covering PAR2
// volume(s).
func Repair(ctx context.Context, coveringPar2 string) error {
	res, err := toolrunner.Must(ctx, "par2_repair", "", map[string]string{"par2": coveringPar2})
	if err != nil {
		return fmt.Errorf("par2 repair: %w", err)
	}
	_ = res
	return nil
}
