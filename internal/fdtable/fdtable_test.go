package fdtable

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAndRestore(t *testing.T) {
	table := New()
	original, err := os.CreateTemp(t.TempDir(), "orig")
	require.NoError(t, err)
	defer original.Close()
	table.Track(5, original, OriginInherited)

	replacement, err := os.CreateTemp(t.TempDir(), "redir")
	require.NoError(t, err)
	table.Track(5, replacement, OriginRedirect)

	e, ok := table.Get(5)
	require.True(t, ok)
	assert.Equal(t, replacement, e.File)

	errs := table.Restore()
	assert.Empty(t, errs)

	e, ok = table.Get(5)
	require.True(t, ok)
	assert.Equal(t, original, e.File)
}

func TestCloneIsIndependent(t *testing.T) {
	table := New()
	f, err := os.CreateTemp(t.TempDir(), "f")
	require.NoError(t, err)
	defer f.Close()
	table.Track(3, f, OriginRedirect)

	clone := table.Clone()
	clone.Restore()

	_, ok := table.Get(3)
	assert.True(t, ok, "restoring the clone must not affect the original table")
}
