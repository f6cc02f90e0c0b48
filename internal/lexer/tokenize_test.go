package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeWiresHeredoc(t *testing.T) {
	toks, err := Tokenize("cat <<EOF\nhello\nEOF\n")
	require.NoError(t, err)
	var op Token
	found := false
	for _, tok := range toks {
		if tok.Type == DLESS {
			op = tok
			found = true
		}
	}
	require.True(t, found)
	require.NotNil(t, op.Heredoc)
	assert.Equal(t, "hello\n", op.Heredoc.Body)
}

func TestTokenizeQuotedHeredocDelimiter(t *testing.T) {
	toks, err := Tokenize("cat <<'EOF'\n$x\nEOF\n")
	require.NoError(t, err)
	for _, tok := range toks {
		if tok.Type == DLESS {
			require.NotNil(t, tok.Heredoc)
			assert.True(t, tok.Heredoc.Quoted)
			assert.Equal(t, "$x\n", tok.Heredoc.Body)
		}
	}
}
