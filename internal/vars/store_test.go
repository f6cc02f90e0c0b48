package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("FOO", "bar"))
	v, ok := s.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v.Value)
}

func TestReadOnlyRejectsWrite(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(Var{Name: "X", Value: "1", ReadOnly: true}))
	err := s.Set("X", "2")
	require.Error(t, err)
	var roErr *ErrReadOnly
	require.ErrorAs(t, err, &roErr)
	v, _ := s.Get("X")
	assert.Equal(t, "1", v.Value)
}

func TestSetPreservesFlags(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(Var{Name: "X", Value: "1", Exported: true}))
	require.NoError(t, s.Set("X", "2"))
	v, _ := s.Get("X")
	assert.Equal(t, "2", v.Value)
	assert.True(t, v.Exported)
}

func TestUnsetThenLookupStillFindsSurvivors(t *testing.T) {
	s := NewStore()
	// Force several names into the same region of the table to build up a
	// nontrivial probe chain, then delete from the middle.
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, n := range names {
		require.NoError(t, s.Set(n, n+"v"))
	}
	s.Unset("c")
	_, ok := s.Get("c")
	assert.False(t, ok)
	for _, n := range names {
		if n == "c" {
			continue
		}
		v, ok := s.Get(n)
		require.True(t, ok, "lost %q after backward-shift delete", n)
		assert.Equal(t, n+"v", v.Value)
	}
	assert.Equal(t, len(names)-1, s.Len())
}

func TestRehashPreservesEntries(t *testing.T) {
	s := NewStore()
	for i := 0; i < 200; i++ {
		name := "VAR" + itoaTest(i)
		require.NoError(t, s.Set(name, itoaTest(i)))
	}
	for i := 0; i < 200; i++ {
		name := "VAR" + itoaTest(i)
		v, ok := s.Get(name)
		require.True(t, ok)
		assert.Equal(t, itoaTest(i), v.Value)
	}
}

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestExportedSortedOutput(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(Var{Name: "B", Value: "2", Exported: true}))
	require.NoError(t, s.Define(Var{Name: "A", Value: "1", Exported: true}))
	require.NoError(t, s.Define(Var{Name: "C", Value: "3"}))
	assert.Equal(t, []string{"A=1", "B=2"}, s.Exported())
}

func TestParseLeadingInt(t *testing.T) {
	assert.Equal(t, int64(42), ParseLeadingInt("42abc"))
	assert.Equal(t, int64(0), ParseLeadingInt("abc"))
	assert.Equal(t, int64(-7), ParseLeadingInt(" -7"))
	assert.Equal(t, int64(0), ParseLeadingInt(""))
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("X", "1"))
	c := s.Clone()
	require.NoError(t, c.Set("X", "2"))
	v, _ := s.Get("X")
	assert.Equal(t, "1", v.Value)
	v2, _ := c.Get("X")
	assert.Equal(t, "2", v2.Value)
}
