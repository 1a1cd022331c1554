package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffusor/talkytime/internal/domainerr"
)

// These two checks precede the xdelta_printdelta subprocess call, so they
// are exercisable without a real xdelta3 binary on PATH.

func TestVerify_RejectsBelowContractSize(t *testing.T) {
	err := Verify(context.Background(), "/nonexistent.xd", 10, 10)
	assert.True(t, domainerr.IsKind(err, "XdeltaMismatch"))
}

func TestVerify_RejectsSizeMismatch(t *testing.T) {
	err := Verify(context.Background(), "/nonexistent.xd", 1000, 2000)
	assert.True(t, domainerr.IsKind(err, "XdeltaMismatch"))
}

func TestLooksLikeInstruction(t *testing.T) {
	assert.True(t, looksLikeInstruction("VCD_SOURCE   0  CPY_0  123  @0"))
	assert.False(t, looksLikeInstruction("ok"))
	assert.False(t, looksLikeInstruction(""))
}
