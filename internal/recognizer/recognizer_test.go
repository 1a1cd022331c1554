package recognizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullRecognizer_AlwaysEmpty(t *testing.T) {
	got, err := NullRecognizer{}.Recognize(context.Background(), "rec.wav", 1.5, 3.0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExternalBinary_EmptyBinShortCircuits(t *testing.T) {
	got, err := ExternalBinary{}.Recognize(context.Background(), "rec.wav", 0, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
