package shellerr

import (
	"errors"
	"testing"

	"github.com/opensh/sh/internal/lexer"
	"github.com/stretchr/testify/assert"
)

func TestFormatForScriptWithPosition(t *testing.T) {
	e := Newf(KindExecution, "command not found: %s", "frobnicate").At(lexer.Position{Line: 3, Column: 1})
	assert.Equal(t, "myscript.sh: line 3: command not found: frobnicate", e.FormatForScript("myscript.sh"))
}

func TestFormatForScriptWithoutPosition(t *testing.T) {
	e := New(KindExecution, "no such file or directory")
	assert.Equal(t, "sh: no such file or directory", e.FormatForScript("sh"))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("permission denied")
	e := Wrap(KindRedirection, cause, "cannot open file")
	assert.ErrorIs(t, e, cause)
}
