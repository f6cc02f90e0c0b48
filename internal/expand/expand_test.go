package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/lexer"
	"github.com/opensh/sh/internal/vars"
)

type fakeRunner struct {
	out  string
	code int
}

func (f fakeRunner) RunCapture(src string) ([]byte, int, error) {
	return []byte(f.out), f.code, nil
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	store := vars.NewStore()
	params := vars.NewPosParams("sh")
	return &Context{Vars: store, Params: params, Runner: fakeRunner{}}
}

func wordOf(t *testing.T, src string) *ast.Word {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	return &ast.Word{Tok: toks[0]}
}

func expandOne(t *testing.T, ctx *Context, src string) []string {
	t.Helper()
	fields, err := ctx.Word(wordOf(t, src))
	require.NoError(t, err)
	return fields
}

func TestLiteralWord(t *testing.T) {
	ctx := newTestContext(t)
	assert.Equal(t, []string{"hello"}, expandOne(t, ctx, "hello"))
}

func TestParameterExpansion(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("FOO", "bar"))
	assert.Equal(t, []string{"bar"}, expandOne(t, ctx, "$FOO"))
	assert.Equal(t, []string{"xbary"}, expandOne(t, ctx, "x${FOO}y"))
}

func TestParameterLength(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("FOO", "hello"))
	assert.Equal(t, []string{"5"}, expandOne(t, ctx, "${#FOO}"))
}

func TestDefaultValue(t *testing.T) {
	ctx := newTestContext(t)
	assert.Equal(t, []string{"fallback"}, expandOne(t, ctx, "${FOO:-fallback}"))
	require.NoError(t, ctx.Vars.Set("FOO", ""))
	assert.Equal(t, []string{"fallback"}, expandOne(t, ctx, "${FOO:-fallback}"))
	assert.Empty(t, expandOne(t, ctx, "${FOO-fallback}"))
}

func TestAssignDefault(t *testing.T) {
	ctx := newTestContext(t)
	assert.Equal(t, []string{"assigned"}, expandOne(t, ctx, "${FOO:=assigned}"))
	v, ok := ctx.Vars.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "assigned", v.Value)
}

func TestUnsetError(t *testing.T) {
	ctx := newTestContext(t)
	_, err := ctx.Word(wordOf(t, "${FOO:?must be set}"))
	require.Error(t, err)
	var upErr *UnsetParameterError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "FOO", upErr.Name)
}

func TestAlternativeValue(t *testing.T) {
	ctx := newTestContext(t)
	assert.Empty(t, expandOne(t, ctx, "${FOO:+alt}"))
	require.NoError(t, ctx.Vars.Set("FOO", "x"))
	assert.Equal(t, []string{"alt"}, expandOne(t, ctx, "${FOO:+alt}"))
}

func TestRemovePrefixSuffix(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("P", "/usr/local/bin"))
	assert.Equal(t, []string{"usr/local/bin"}, expandOne(t, ctx, "${P#/}"))
	assert.Equal(t, []string{"bin"}, expandOne(t, ctx, "${P##*/}"))
	require.NoError(t, ctx.Vars.Set("F", "file.tar.gz"))
	assert.Equal(t, []string{"file.tar"}, expandOne(t, ctx, "${F%.gz}"))
	assert.Equal(t, []string{"file"}, expandOne(t, ctx, "${F%%.*}"))
}

func TestSubstring(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("S", "hello world"))
	assert.Equal(t, []string{"hello"}, expandOne(t, ctx, "${S:0:5}"))
	assert.Equal(t, []string{"world"}, expandOne(t, ctx, "${S:6}"))
}

func TestFieldSplittingDefaultIFS(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("X", "a  b   c"))
	assert.Equal(t, []string{"a", "b", "c"}, expandOne(t, ctx, "$X"))
}

func TestFieldSplittingCustomIFSColon(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("IFS", ":"))
	require.NoError(t, ctx.Vars.Set("X", ":a:"))
	assert.Equal(t, []string{"", "a"}, expandOne(t, ctx, "$X"))
}

func TestDoubleQuotedSuppressesSplitting(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("X", "a b c"))
	assert.Equal(t, []string{"a b c"}, expandOne(t, ctx, `"$X"`))
}

func TestPositionalAtQuotedSplitsPerParam(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Params.Set([]string{"one", "two three", "four"})
	assert.Equal(t, []string{"one", "two three", "four"}, expandOne(t, ctx, `"$@"`))
}

func TestPositionalStarQuotedJoinsWithIFS(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Params.Set([]string{"one", "two", "three"})
	assert.Equal(t, []string{"one two three"}, expandOne(t, ctx, `"$*"`))
}

func TestCommandSubstitution(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Runner = fakeRunner{out: "result\n\n"}
	assert.Equal(t, []string{"result"}, expandOne(t, ctx, "$(cmd)"))
}

func TestArithmeticExpansion(t *testing.T) {
	ctx := newTestContext(t)
	assert.Equal(t, []string{"7"}, expandOne(t, ctx, "$((3+4))"))
}

func TestTildeExpansion(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.Vars.Set("HOME", "/home/test"))
	assert.Equal(t, []string{"/home/test/x"}, expandOne(t, ctx, "~/x"))
}

func TestAssignmentValueSuppressesSplitAndGlob(t *testing.T) {
	ctx := newTestContext(t)
	ctx.AssignmentValue = true
	require.NoError(t, ctx.Vars.Set("X", "a b *"))
	fields, err := ctx.Word(wordOf(t, "$X"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a b *"}, fields)
}

func TestSingleQuotedLiteral(t *testing.T) {
	ctx := newTestContext(t)
	assert.Equal(t, []string{"a$b c"}, expandOne(t, ctx, `'a$b c'`))
}
