package fec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBlockSize_S4 reproduces spec's scenario S4: a 1 GiB file, 2 volumes,
// 5% redundancy must size to a 12288-byte block.
func TestBlockSize_S4(t *testing.T) {
	const gib = 1 << 30
	assert.Equal(t, int64(12288), BlockSize(gib, 2, 5, 4096))
}

func TestBlockSize_FloorsAtBlockAlign(t *testing.T) {
	// A tiny file with trivial redundancy must never size below the
	// alignment floor.
	assert.Equal(t, int64(4096), BlockSize(1, 1, 1, 4096))
}

func TestBlockSize_RoundsUpToAlignment(t *testing.T) {
	got := BlockSize(1<<20, 1, 10, 4096)
	assert.Equal(t, int64(0), got%4096)
}

func TestBlockSize_DefaultsAlignWhenZero(t *testing.T) {
	const gib = 1 << 30
	assert.Equal(t, int64(12288), BlockSize(gib, 2, 5, 0))
}

func TestBlockSize_HonorsCustomAlign(t *testing.T) {
	got := BlockSize(1<<20, 1, 10, 8192)
	assert.Equal(t, int64(0), got%8192)
}
