// Package shellerr implements the shell's error taxonomy and the
// "scriptname: line N: message" rendering POSIX shells use when reporting a
// failure against a running script.
package shellerr

import (
	"fmt"
	"strings"

	"github.com/opensh/sh/internal/lexer"
	"github.com/pkg/errors"
)

// Kind classifies an Error into one of the taxonomy buckets spec §7 names.
type Kind int

const (
	KindLex Kind = iota
	KindParse
	KindExpansion
	KindRedirection
	KindExecution
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindParse:
		return "parse"
	case KindExpansion:
		return "expansion"
	case KindRedirection:
		return "redirection"
	case KindExecution:
		return "execution"
	case KindSignal:
		return "signal"
	}
	return "unknown"
}

// Error is the shell's error type: a taxonomy Kind, an optional source
// position, a human message, and an optional wrapped cause for the Go-level
// failure (a syscall error, an os.PathError, ...) that produced it.
type Error struct {
	Kind    Kind
	Pos     *lexer.Position
	Message string
	Cause   error
}

// New creates an Error with no position and no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source position to the error, returning the same *Error for
// chaining at the call site.
func (e *Error) At(pos lexer.Position) *Error {
	e.Pos = &pos
	return e
}

// Wrap attaches cause as the underlying error via github.com/pkg/errors, so
// the resulting chain still exposes the original syscall/os error through
// errors.Cause / errors.Unwrap.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.Wrap(cause, message)}
}

// Error implements the error interface with a compact single-line form.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Pos != nil {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// FormatForScript renders the POSIX "name: line N: message" diagnostic a
// non-interactive shell writes to stderr before exiting.
func (e *Error) FormatForScript(name string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(": ")
	if e.Pos != nil {
		sb.WriteString(fmt.Sprintf("line %d: ", e.Pos.Line))
	}
	sb.WriteString(e.Message)
	return sb.String()
}
