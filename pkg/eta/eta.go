// Package eta estimates time remaining for a fixed-size run of work, via
// cross-multiplication of elapsed time against progress so far. Trimmed
// from the teacher's dual Simple/Advanced eta providers (pkg/eta) down to
// the single algorithm taketake's file-count progress bar needs: no GUI
// routing, no per-sample rate history, just "how much longer."
package eta

import (
	"sync"
	"time"
)

const (
	// minimumElapsed is how long a run must have been going before an
	// estimate is shown at all.
	minimumElapsed = 2 * time.Second
	// pessimismFactor nudges the cross-multiplication estimate upward; FLAC
	// encode and PAR2 generation tend to take a little longer per file as a
	// run goes on, not less.
	pessimismFactor = 1.05
	// minimumProgress is the fraction of total work that must be done
	// before an estimate is trusted.
	minimumProgress = 0.25
)

// Estimate is a point-in-time read of a Calculator. Remaining is negative
// when not enough samples exist yet to estimate with any confidence.
type Estimate struct {
	Remaining   time.Duration
	PercentDone float64
}

// Calculator estimates remaining time for total fixed-size units of work,
// given periodic Completed(n) reports of cumulative progress.
type Calculator struct {
	mu              sync.RWMutex
	startTime       time.Time
	total           int64
	completed       int64
	initialProgress int64 // progress already done when Completed was first called
}

// NewCalculator builds a Calculator for total units of work.
func NewCalculator(total int64) *Calculator {
	return &Calculator{startTime: time.Now(), total: total}
}

// Completed records the cumulative number of units finished so far.
func (c *Calculator) Completed(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed == 0 && n > 0 {
		c.initialProgress = n
	}
	c.completed = n
}

// Estimate returns the current remaining-time estimate. Remaining is -1
// until minimumElapsed has passed, minimumProgress fraction of total is
// done, and this resumed session itself has contributed a few samples
// (a run resumed near completion shouldn't claim confidence it hasn't
// earned in the current session).
func (c *Calculator) Estimate() Estimate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var percentDone float64
	if c.total > 0 {
		percentDone = float64(c.completed) / float64(c.total)
	}
	result := Estimate{Remaining: -1, PercentDone: percentDone}

	if c.completed >= c.total {
		return Estimate{Remaining: 0, PercentDone: 1.0}
	}

	sessionDone := c.completed - c.initialProgress

	// Minimum session samples scales with run size: a 10-file run wants 2
	// done, a 4-file run wants 1, capped at 5 for large runs.
	minSamples := c.total / 4
	if minSamples < 1 {
		minSamples = 1
	}
	if minSamples > 5 {
		minSamples = 5
	}

	if sessionDone < minSamples ||
		time.Since(c.startTime) < minimumElapsed ||
		percentDone < minimumProgress {
		return result
	}

	elapsed := time.Since(c.startTime)
	remaining := c.total - c.completed
	estimate := time.Duration(float64(elapsed) * float64(remaining) / float64(sessionDone))
	estimate = time.Duration(float64(estimate) * pessimismFactor)

	return Estimate{Remaining: estimate, PercentDone: percentDone}
}
