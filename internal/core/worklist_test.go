package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorklist_AppendGet(t *testing.T) {
	w := NewWorklist()
	e1 := &Entry{SourceWAV: "a.wav"}
	e2 := &Entry{SourceWAV: "b.wav"}

	t1 := w.Append(e1)
	t2 := w.Append(e2)

	assert.Equal(t, Token(0), t1)
	assert.Equal(t, Token(1), t2)
	assert.Same(t, e1, w.Get(t1))
	assert.Same(t, e2, w.Get(t2))
	assert.Equal(t, 2, w.Len())
}

func TestWorklist_GetOutOfRangePanics(t *testing.T) {
	w := NewWorklist()
	w.Append(&Entry{})
	assert.Panics(t, func() { w.Get(Token(5)) })
}

func TestWavProgressDir(t *testing.T) {
	got := WavProgressDir("/archive/piano", "20210519-193800.tmp", "/tmp/rec001.wav")
	assert.Equal(t, filepath.Join("/archive/piano", "20210519-193800.tmp", "rec001.wav"), got)
}

func TestExistingPar2Volumes(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "track.flac")
	require.NoError(t, os.WriteFile(final, []byte("data"), 0o644))

	assert.Empty(t, existingPar2Volumes(final))

	vol1 := filepath.Join(dir, "track.flac.vol000+01.par2")
	vol2 := filepath.Join(dir, "track.flac.vol001+02.par2")
	require.NoError(t, os.WriteFile(vol1, []byte("p1"), 0o644))
	require.NoError(t, os.WriteFile(vol2, []byte("p2"), 0o644))
	// Unrelated file sharing a prefix but the wrong extension must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "track.flac.txt"), []byte("x"), 0o644))

	vols := existingPar2Volumes(final)
	assert.ElementsMatch(t, []string{vol1, vol2}, vols)
}
