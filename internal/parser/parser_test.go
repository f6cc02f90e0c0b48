package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	return prog
}

func singleCommand(t *testing.T, prog *ast.Program) ast.Command {
	t.Helper()
	require.Len(t, prog.Commands, 1)
	list := prog.Commands[0].List
	require.Len(t, list.AndOrs, 1)
	require.Len(t, list.AndOrs[0].Pipelines, 1)
	require.Len(t, list.AndOrs[0].Pipelines[0].Commands, 1)
	return list.AndOrs[0].Pipelines[0].Commands[0]
}

func TestSimpleCommand(t *testing.T) {
	prog := mustParse(t, "echo hello world\n")
	cmd := singleCommand(t, prog).(*ast.SimpleCommand)
	assert.Equal(t, "echo", cmd.Name.Tok.Lit)
	require.Len(t, cmd.Args, 2)
	assert.Equal(t, "hello", cmd.Args[0].Tok.Lit)
	assert.Equal(t, "world", cmd.Args[1].Tok.Lit)
}

func TestPrefixAssignmentOnlyCommand(t *testing.T) {
	prog := mustParse(t, "FOO=bar\n")
	cmd := singleCommand(t, prog).(*ast.SimpleCommand)
	assert.Nil(t, cmd.Name)
	require.Len(t, cmd.Assigns, 1)
	assert.Equal(t, "FOO", cmd.Assigns[0].Name)
	assert.Equal(t, "bar", cmd.Assigns[0].Value.Tok.Lit)
}

func TestPrefixAssignmentBeforeCommand(t *testing.T) {
	prog := mustParse(t, "FOO=bar BAZ=qux cmd arg\n")
	cmd := singleCommand(t, prog).(*ast.SimpleCommand)
	require.Len(t, cmd.Assigns, 2)
	assert.Equal(t, "cmd", cmd.Name.Tok.Lit)
	require.Len(t, cmd.Args, 1)
}

func TestPipeline(t *testing.T) {
	prog := mustParse(t, "a | b | c\n")
	list := prog.Commands[0].List
	pl := list.AndOrs[0].Pipelines[0]
	assert.False(t, pl.Negate)
	require.Len(t, pl.Commands, 3)
}

func TestNegatedPipeline(t *testing.T) {
	prog := mustParse(t, "! grep foo file\n")
	pl := prog.Commands[0].List.AndOrs[0].Pipelines[0]
	assert.True(t, pl.Negate)
}

func TestAndOrChain(t *testing.T) {
	prog := mustParse(t, "a && b || c\n")
	ao := prog.Commands[0].List.AndOrs[0]
	require.Len(t, ao.Pipelines, 3)
	require.Equal(t, []ast.AndOrOp{ast.AndOrAnd, ast.AndOrOr}, ao.Ops)
}

func TestBackgroundList(t *testing.T) {
	prog := mustParse(t, "a & b\n")
	list := prog.Commands[0].List
	require.Len(t, list.AndOrs, 2)
	require.Equal(t, []bool{true, false}, list.Background)
}

func TestIfElse(t *testing.T) {
	prog := mustParse(t, "if true; then echo yes; else echo no; fi\n")
	ifc := singleCommand(t, prog).(*ast.IfClause)
	require.Len(t, ifc.Conds, 1)
	require.Len(t, ifc.Bodies, 1)
	require.NotNil(t, ifc.Else)
}

func TestIfElif(t *testing.T) {
	prog := mustParse(t, "if a; then b; elif c; then d; fi\n")
	ifc := singleCommand(t, prog).(*ast.IfClause)
	require.Len(t, ifc.Conds, 2)
	require.Len(t, ifc.Bodies, 2)
	assert.Nil(t, ifc.Else)
}

func TestWhileLoop(t *testing.T) {
	prog := mustParse(t, "while true; do echo x; done\n")
	wl := singleCommand(t, prog).(*ast.WhileLoop)
	assert.False(t, wl.Until)
}

func TestUntilLoop(t *testing.T) {
	prog := mustParse(t, "until false; do echo x; done\n")
	wl := singleCommand(t, prog).(*ast.WhileLoop)
	assert.True(t, wl.Until)
}

func TestForLoopWithIn(t *testing.T) {
	prog := mustParse(t, "for i in a b c; do echo $i; done\n")
	fl := singleCommand(t, prog).(*ast.ForLoop)
	assert.Equal(t, "i", fl.Name)
	assert.True(t, fl.HasIn)
	require.Len(t, fl.Words, 3)
}

func TestForLoopWithoutIn(t *testing.T) {
	prog := mustParse(t, "for i\ndo echo $i; done\n")
	fl := singleCommand(t, prog).(*ast.ForLoop)
	assert.False(t, fl.HasIn)
}

func TestCaseClause(t *testing.T) {
	prog := mustParse(t, "case $x in a|b) echo 1 ;; *) echo 2 ;; esac\n")
	cc := singleCommand(t, prog).(*ast.CaseClause)
	require.Len(t, cc.Items, 2)
	require.Len(t, cc.Items[0].Patterns, 2)
	assert.False(t, cc.Items[0].FallThrough)
}

func TestCaseFallThrough(t *testing.T) {
	prog := mustParse(t, "case $x in a) echo 1 ;& b) echo 2 ;; esac\n")
	cc := singleCommand(t, prog).(*ast.CaseClause)
	require.Len(t, cc.Items, 2)
	assert.True(t, cc.Items[0].FallThrough)
}

func TestSubshell(t *testing.T) {
	prog := mustParse(t, "(cd /tmp; ls)\n")
	sub := singleCommand(t, prog).(*ast.Subshell)
	require.Len(t, sub.Body.AndOrs, 2)
}

func TestBraceGroup(t *testing.T) {
	prog := mustParse(t, "{ echo a; echo b; }\n")
	bg := singleCommand(t, prog).(*ast.BraceGroup)
	require.Len(t, bg.Body.AndOrs, 2)
}

func TestFunctionDef(t *testing.T) {
	prog := mustParse(t, "greet() { echo hi; }\n")
	fd := singleCommand(t, prog).(*ast.FunctionDef)
	assert.Equal(t, "greet", fd.Name)
	_, ok := fd.Body.(*ast.BraceGroup)
	assert.True(t, ok)
}

func TestRedirections(t *testing.T) {
	prog := mustParse(t, "cmd < in.txt > out.txt 2>> err.txt\n")
	cmd := singleCommand(t, prog).(*ast.SimpleCommand)
	require.Len(t, cmd.Redirs, 3)
	assert.Equal(t, ast.RedirLess, cmd.Redirs[0].Op)
	assert.Equal(t, ast.RedirGreat, cmd.Redirs[1].Op)
	assert.Equal(t, ast.RedirDGreat, cmd.Redirs[2].Op)
	assert.True(t, cmd.Redirs[2].HasFd)
	assert.Equal(t, 2, cmd.Redirs[2].Fd)
}

func TestHeredocWiring(t *testing.T) {
	prog := mustParse(t, "cat <<EOF\nhello\nEOF\n")
	cmd := singleCommand(t, prog).(*ast.SimpleCommand)
	require.Len(t, cmd.Redirs, 1)
	assert.Equal(t, ast.RedirHeredoc, cmd.Redirs[0].Op)
	require.NotNil(t, cmd.Redirs[0].Heredoc)
	assert.Equal(t, "hello\n", cmd.Redirs[0].Heredoc.Body)
}

func TestMultipleCompleteCommands(t *testing.T) {
	prog := mustParse(t, "echo a\necho b\n")
	require.Len(t, prog.Commands, 2)
}
