package procexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureOutputStripsTrailingNewlines(t *testing.T) {
	path, err := LookPath("echo")
	require.NoError(t, err)
	out, code, err := CaptureOutput(Spec{Path: path, Args: []string{"echo", "hello"}})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello", string(StripTrailingNewlines(out)))
}

func TestStripTrailingNewlines(t *testing.T) {
	assert.Equal(t, "abc", string(StripTrailingNewlines([]byte("abc\n\n\n"))))
	assert.Equal(t, "", string(StripTrailingNewlines([]byte("\n\n"))))
	assert.Equal(t, "abc\ndef", string(StripTrailingNewlines([]byte("abc\ndef\n"))))
}

func TestNonZeroExit(t *testing.T) {
	path, err := LookPath("false")
	require.NoError(t, err)
	_, code, err := CaptureOutput(Spec{Path: path, Args: []string{"false"}})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}
