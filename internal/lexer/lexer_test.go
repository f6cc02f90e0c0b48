package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src)
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestOperatorsLongestMatch(t *testing.T) {
	toks := collect(t, ";; ;& && || << <<- >> <& >& <> >|")
	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		DSEMI, DSEMI_AMP, AND_IF, OR_IF, DLESS, DLESSDASH, DGREAT,
		LESSAND, GREATAND, LESSGREAT, CLOBBER, EOF,
	}, types)
}

func TestSimpleWord(t *testing.T) {
	toks := collect(t, "echo hello")
	require.Len(t, toks, 3)
	assert.Equal(t, WORD, toks[0].Type)
	assert.Equal(t, "echo", toks[0].Lit)
	assert.Equal(t, WORD, toks[1].Type)
	assert.Equal(t, "hello", toks[1].Lit)
}

func TestAssignmentWord(t *testing.T) {
	toks := collect(t, "FOO=bar echo")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, ASSIGNMENT_WORD, toks[0].Type)
}

func TestIONumber(t *testing.T) {
	toks := collect(t, "2>&1")
	require.Len(t, toks, 4)
	assert.Equal(t, IO_NUMBER, toks[0].Type)
	assert.Equal(t, "2", toks[0].Lit)
	assert.Equal(t, GREATAND, toks[1].Type)
	assert.Equal(t, WORD, toks[2].Type)
	assert.Equal(t, "1", toks[2].Lit)
}

func TestSingleQuotedIsInert(t *testing.T) {
	toks := collect(t, `echo 'a$b"c'`)
	require.Len(t, toks, 3)
	require.Len(t, toks[1].Parts, 1)
	assert.Equal(t, PartSingleQuoted, toks[1].Parts[0].Kind)
	assert.Equal(t, `a$b"c`, toks[1].Parts[0].Text)
}

func TestDoubleQuotedWithParam(t *testing.T) {
	toks := collect(t, `echo "hi $name there"`)
	require.Len(t, toks, 3)
	require.Len(t, toks[1].Parts, 1)
	dq := toks[1].Parts[0]
	assert.Equal(t, PartDoubleQuoted, dq.Kind)
	require.Len(t, dq.Parts, 3)
	assert.Equal(t, PartLiteral, dq.Parts[0].Kind)
	assert.Equal(t, PartParam, dq.Parts[1].Kind)
	assert.Equal(t, "name", dq.Parts[1].Text)
}

func TestCommandSubstitutionNesting(t *testing.T) {
	toks := collect(t, "echo $(echo $(echo inner))")
	require.Len(t, toks, 3)
	require.Len(t, toks[1].Parts, 1)
	assert.Equal(t, PartCommandSub, toks[1].Parts[0].Kind)
	assert.Equal(t, "echo $(echo inner)", toks[1].Parts[0].Text)
}

func TestArithSubstitution(t *testing.T) {
	toks := collect(t, "echo $((1 + (2 * 3)))")
	require.Len(t, toks, 3)
	require.Len(t, toks[1].Parts, 1)
	assert.Equal(t, PartArithSub, toks[1].Parts[0].Kind)
	assert.Equal(t, "1 + (2 * 3)", toks[1].Parts[0].Text)
}

func TestLineContinuationDisappears(t *testing.T) {
	toks := collect(t, "echo foo\\\nbar")
	require.Len(t, toks, 3)
	assert.Equal(t, "foobar", toks[1].Lit)
}

func TestCommentToEndOfLine(t *testing.T) {
	toks := collect(t, "echo hi # a comment\necho bye")
	var lits []string
	for _, tok := range toks {
		if tok.Type == WORD {
			lits = append(lits, tok.Lit)
		}
	}
	assert.Equal(t, []string{"echo", "hi", "echo", "bye"}, lits)
}

func TestHeredocBodyCollected(t *testing.T) {
	l := New("cat <<EOF\nline one\nline two\nEOF\necho after\n")
	var toks []Token
	var req *HeredocRequest
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Type == DLESS {
			delim, err := l.Next()
			require.NoError(t, err)
			req = l.QueueHeredoc(delim.Lit, false, false)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	require.NotNil(t, req)
	assert.Equal(t, "line one\nline two\n", req.Body)
}

func TestHeredocStripTabs(t *testing.T) {
	l := New("cat <<-EOF\n\t\tindented\n\tEOF\necho after\n")
	var req *HeredocRequest
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Type == DLESSDASH {
			delim, err := l.Next()
			require.NoError(t, err)
			req = l.QueueHeredoc(delim.Lit, false, true)
		}
		if tok.Type == EOF {
			break
		}
	}
	require.NotNil(t, req)
	assert.Equal(t, "indented\n", req.Body)
}

func TestUnterminatedQuoteIsIncomplete(t *testing.T) {
	l := New("echo 'unterminated")
	_, err := l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestNulByteIsInvalid(t *testing.T) {
	l := New("echo \x00bad")
	_, err := l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	assert.ErrorIs(t, err, ErrInvalidByte)
}
