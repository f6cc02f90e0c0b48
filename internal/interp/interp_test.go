package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	return NewShell("sh")
}

func varValue(t *testing.T, sh *Shell, name string) (string, bool) {
	t.Helper()
	v, ok := sh.Top.Vars.Get(name)
	return v.Value, ok
}

func TestLocalShadowsAndRestoresOnFunctionPop(t *testing.T) {
	sh := newTestShell(t)
	src := `
x=1
g() {
  x=3
}
f() {
  local x=2
  g
}
f
`
	status := sh.RunString(src)
	require.Equal(t, 0, status)
	v, ok := varValue(t, sh, "x")
	require.True(t, ok)
	assert.Equal(t, "1", v, "local's save/restore must undo the shadow on function-frame pop, even though g mutated the shared store while shadowed")
}

func TestBreakWithDepthUnwindsBothLoops(t *testing.T) {
	sh := newTestShell(t)
	src := `
result=
for i in 1 2 3; do
  for j in a b c; do
    case $j in
      b) break 2 ;;
    esac
    result="${result}${i}${j}"
  done
done
`
	status := sh.RunString(src)
	require.Equal(t, 0, status)
	v, ok := varValue(t, sh, "result")
	require.True(t, ok)
	assert.Equal(t, "1a", v)
}

func TestContinueSkipsRestOfInnerIteration(t *testing.T) {
	sh := newTestShell(t)
	src := `
result=
for j in a b c; do
  case $j in
    b) continue ;;
  esac
  result="${result}${j}"
done
`
	status := sh.RunString(src)
	require.Equal(t, 0, status)
	v, _ := varValue(t, sh, "result")
	assert.Equal(t, "ac", v)
}

func TestErrExitSkipsIfConditionButFiresOnPlainCommand(t *testing.T) {
	sh := newTestShell(t)
	src := `
failer() { return 1; }
set -e
if failer; then :; fi
marker=ok
failer
marker2=ok
`
	status := sh.RunString(src)
	assert.Equal(t, 1, status, "errexit should abort at the untested failer call")

	v, ok := varValue(t, sh, "marker")
	require.True(t, ok)
	assert.Equal(t, "ok", v, "errexit must not fire for a command tested by if")

	_, ok = varValue(t, sh, "marker2")
	assert.False(t, ok, "the command after the untested failing call must never run")
}

func TestSubshellVariableChangesDoNotEscape(t *testing.T) {
	sh := newTestShell(t)
	src := `
x=1
( x=2 )
`
	status := sh.RunString(src)
	require.Equal(t, 0, status)
	v, _ := varValue(t, sh, "x")
	assert.Equal(t, "1", v)
}

func TestFunctionPositionalParametersDoNotLeak(t *testing.T) {
	sh := newTestShell(t)
	src := `
seen=
f() {
  seen="$1-$2"
}
f a b
`
	status := sh.RunString(src)
	require.Equal(t, 0, status)
	v, _ := varValue(t, sh, "seen")
	assert.Equal(t, "a-b", v)

	_, ok := sh.Top.Params.Get(1)
	assert.False(t, ok, "the function's positional parameters must be a COPY, not visible at top level")
}

func TestExitTrapRunsOnNormalCompletion(t *testing.T) {
	sh := newTestShell(t)
	src := `
trap 'marker=trapped' EXIT
:
`
	status := sh.RunString(src)
	require.Equal(t, 0, status)
	v, ok := varValue(t, sh, "marker")
	require.True(t, ok)
	assert.Equal(t, "trapped", v)
}

func TestExitBuiltinStopsTheScript(t *testing.T) {
	sh := newTestShell(t)
	src := `
marker=before
exit 7
marker=after
`
	status := sh.RunString(src)
	assert.Equal(t, 7, status)
	v, _ := varValue(t, sh, "marker")
	assert.Equal(t, "before", v)
}

func TestReturnOutsideFunctionIsReportedNotPanicked(t *testing.T) {
	sh := newTestShell(t)
	status := sh.RunString("return 3")
	assert.NotEqual(t, 0, status)
}
