package core

import (
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/diffusor/talkytime/pkg/eta"
)

// ProgressReporter drives a terminal progress bar and ETA estimate across a
// whole run, incremented once per file that reaches cleanup — the only
// step every predecessor must have emitted a token to first (invariant 6),
// making it the meaningful "done" signal for a worklist entry. Modeled on
// the teacher's mkItemBar/ETA-calculator pairing, narrowed from its
// GUI-routed progress bars down to a single stdout bar since taketake has
// no GUI surface.
type ProgressReporter struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	eta *eta.Calculator
	n   int64
}

// NewProgressReporter builds a reporter for total files, or nil when total
// is zero (nothing to report).
func NewProgressReporter(total int) *ProgressReporter {
	if total <= 0 {
		return nil
	}
	return &ProgressReporter{
		bar: mkFileBar(total, "Archiving recordings..."),
		eta: eta.NewCalculator(int64(total)),
	}
}

// Increment marks one more file as finished (cleanup completed) and
// refreshes the bar's description with the current ETA once the
// calculator has enough samples to produce one.
func (r *ProgressReporter) Increment() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.n++
	r.eta.Completed(r.n)
	_ = r.bar.Add(1)

	if est := r.eta.Estimate(); est.Remaining >= 0 {
		r.bar.Describe("Archiving recordings... ETA " + est.Remaining.Round(1e9).String())
	}
}

// mkFileBar mirrors the teacher's mkItemBar (internal/core/concurrency.go):
// same width/theme, retargeted at stdout since there is no GUI handler to
// route it through here.
func mkFileBar(n int, descr string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(descr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(31),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
