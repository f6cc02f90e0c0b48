package arith

import (
	"testing"

	"github.com/opensh/sh/internal/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, expr string, store *vars.Store) int64 {
	t.Helper()
	if store == nil {
		store = vars.NewStore()
	}
	v, err := Eval(expr, store)
	require.NoError(t, err)
	return v
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, int64(42), eval(t, "42", nil))
	assert.Equal(t, int64(8), eval(t, "010", nil))
	assert.Equal(t, int64(255), eval(t, "0xFF", nil))
	assert.Equal(t, int64(0), eval(t, "0", nil))
}

func TestPrecedence(t *testing.T) {
	assert.Equal(t, int64(14), eval(t, "2 + 3 * 4", nil))
	assert.Equal(t, int64(20), eval(t, "(2 + 3) * 4", nil))
	assert.Equal(t, int64(1), eval(t, "1 + 2 == 3", nil))
}

func TestUnary(t *testing.T) {
	assert.Equal(t, int64(-5), eval(t, "-5", nil))
	assert.Equal(t, int64(5), eval(t, "--5", nil))
	assert.Equal(t, int64(0), eval(t, "!5", nil))
	assert.Equal(t, int64(1), eval(t, "!0", nil))
	assert.Equal(t, int64(-1), eval(t, "~0", nil))
}

func TestDivisionAndModuloByZero(t *testing.T) {
	_, err := Eval("1 / 0", vars.NewStore())
	assert.ErrorIs(t, err, ErrDivByZero)
	_, err = Eval("1 % 0", vars.NewStore())
	assert.ErrorIs(t, err, ErrDivByZero)
}

func TestShortCircuitSkipsAssignment(t *testing.T) {
	s := vars.NewStore()
	_, err := Eval("0 && (x = 5)", s)
	require.NoError(t, err)
	_, ok := s.Get("x")
	assert.False(t, ok, "right side of && must not run when left is false")

	_, err = Eval("1 || (y = 5)", s)
	require.NoError(t, err)
	_, ok = s.Get("y")
	assert.False(t, ok, "right side of || must not run when left is true")
}

func TestTernarySelectedBranchOnly(t *testing.T) {
	s := vars.NewStore()
	v := eval(t, "1 ? (a = 10) : (b = 20)", s)
	assert.Equal(t, int64(10), v)
	_, ok := s.Get("a")
	assert.True(t, ok)
	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestCompoundAssignmentOrder(t *testing.T) {
	s := vars.NewStore()
	require.NoError(t, s.Set("v", "20"))
	v := eval(t, "v /= 4", s)
	assert.Equal(t, int64(5), v)
	got, _ := s.Get("v")
	assert.Equal(t, "5", got.Value)
}

func TestUndefinedVariableIsZero(t *testing.T) {
	assert.Equal(t, int64(5), eval(t, "undefined_var + 5", nil))
}

func TestUnparsableVariableIsZero(t *testing.T) {
	s := vars.NewStore()
	require.NoError(t, s.Set("v", "not-a-number"))
	assert.Equal(t, int64(0), eval(t, "v", s))
}

func TestCommaDiscardsLeft(t *testing.T) {
	assert.Equal(t, int64(2), eval(t, "1, 2", nil))
}
