package eta_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/diffusor/talkytime/pkg/eta"
)

func TestCalculator_NoEstimateBeforeMinimumElapsed(t *testing.T) {
	c := eta.NewCalculator(10)
	c.Completed(5)
	assert.Less(t, c.Estimate().Remaining, time.Duration(0))
}

func TestCalculator_EstimateAfterEnoughProgress(t *testing.T) {
	c := eta.NewCalculator(10)
	for i := int64(1); i <= 5; i++ {
		c.Completed(i)
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(2 * time.Second)
	c.Completed(6)

	est := c.Estimate()
	assert.GreaterOrEqual(t, est.Remaining, time.Duration(0))
	assert.InDelta(t, 0.6, est.PercentDone, 1e-9)
}

func TestCalculator_ResumedRunNeedsFreshSamples(t *testing.T) {
	c := eta.NewCalculator(10)
	c.Completed(4) // simulate resuming with 4/10 already done

	assert.Less(t, c.Estimate().Remaining, time.Duration(0))
}

func TestCalculator_CompleteReturnsZero(t *testing.T) {
	c := eta.NewCalculator(4)
	c.Completed(4)
	assert.Equal(t, eta.Estimate{Remaining: 0, PercentDone: 1.0}, c.Estimate())
}
