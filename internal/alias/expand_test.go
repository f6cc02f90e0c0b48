package alias

import (
	"testing"

	"github.com/opensh/sh/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []lexer.Token {
	t.Helper()
	l := lexer.New(src)
	var toks []lexer.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Type == lexer.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func lits(toks []lexer.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Lit
	}
	return out
}

func TestSimpleAliasSubstitution(t *testing.T) {
	store := NewStore()
	store.Define("ll", "ls -la")
	toks := lexAll(t, "ll /tmp")
	out, err := Expand(toks, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-la", "/tmp"}, lits(out))
}

func TestNonCommandPositionNotExpanded(t *testing.T) {
	store := NewStore()
	store.Define("ll", "ls -la")
	toks := lexAll(t, "echo ll")
	out, err := Expand(toks, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "ll"}, lits(out))
}

func TestRecursionGuard(t *testing.T) {
	store := NewStore()
	store.Define("ls", "ls --color")
	toks := lexAll(t, "ls /tmp")
	out, err := Expand(toks, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "--color", "/tmp"}, lits(out))
}

func TestTrailingBlankExtendsCommandPosition(t *testing.T) {
	store := NewStore()
	store.Define("sudo", "sudo ")
	store.Define("ll", "ls -la")
	toks := lexAll(t, "sudo ll /tmp")
	out, err := Expand(toks, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "ls", "-la", "/tmp"}, lits(out))
}
