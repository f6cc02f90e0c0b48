// Package expand implements the seven-step POSIX word expander: tilde,
// parameter, command substitution, arithmetic, field splitting, pathname
// expansion and quote removal, applied to a single lexer-produced word in
// the exact order POSIX specifies.
package expand

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/opensh/sh/internal/arith"
	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/lexer"
	"github.com/opensh/sh/internal/vars"
)

// Runner executes a captured sub-program for command substitution. The
// execution frame engine supplies the concrete implementation; expand only
// depends on this narrow interface to avoid an import cycle.
type Runner interface {
	RunCapture(src string) (output []byte, exitCode int, err error)
}

// UnsetParameterError is produced by "${name:?word}" / "${name?word}" when
// name is unset (or null, for the ":?" form). The execution frame engine
// treats this as a fatal error for the command currently being expanded.
type UnsetParameterError struct {
	Name    string
	Message string
}

func (e *UnsetParameterError) Error() string {
	if e.Message != "" {
		return e.Name + ": " + e.Message
	}
	return e.Name + ": parameter null or not set"
}

// Context carries everything expansion needs beyond the word itself: the
// variable store (for reads and ":=" assignment), positional parameters,
// special-parameter values, and the hook back into command execution for
// command substitution.
type Context struct {
	Vars      *vars.Store
	Params    *vars.PosParams
	LastExit  int    // $?
	LastBgPid int    // $!
	ShellFlags string // $-
	ShellPid  int    // $$
	Runner    Runner

	// AssignmentValue suppresses field splitting and pathname expansion,
	// per the "assignment context" rule: the result is always one field.
	AssignmentValue bool
}

// IFS returns the active IFS value, defaulting to " \t\n" when unset.
func (c *Context) IFS() string {
	if v, ok := c.Vars.Get("IFS"); ok {
		return v.Value
	}
	return " \t\n"
}

func (c *Context) lookupVar(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(c.LastExit), true
	case "$":
		return strconv.Itoa(c.ShellPid), true
	case "!":
		if c.LastBgPid == 0 {
			return "", false
		}
		return strconv.Itoa(c.LastBgPid), true
	case "#":
		return strconv.Itoa(c.Params.Len()), true
	case "-":
		return c.ShellFlags, true
	case "0":
		return c.Params.Arg0(), true
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 1 {
		return c.Params.Get(n)
	}
	if v, ok := c.Vars.Get(name); ok {
		return v.Value, true
	}
	return "", false
}

// run is an internal run of runs (text + splitting eligibility) that makes
// up one field-in-progress. quoted runs are immune to field splitting and
// pathname expansion.
type run struct {
	text   string
	quoted bool
}

// fieldBuilder accumulates runs for one resulting field before step 5/6
// are applied. forceKeep records that some quoted content (even an empty
// string, as in a bare "") contributed to this field: an entirely-empty
// field must still survive splitting when that emptiness came from quoting
// rather than from an unquoted expansion collapsing to nothing.
type fieldBuilder struct {
	runs      []run
	forceKeep bool
}

func (f *fieldBuilder) add(text string, quoted bool) {
	if quoted {
		f.forceKeep = true
	} else if text == "" {
		return
	}
	f.runs = append(f.runs, run{text: text, quoted: quoted})
}

// Word expands w in full, producing the ordered fields POSIX specifies.
// Use WordSingle for assignment-value context (suppresses steps 5 and 6).
func (c *Context) Word(w *ast.Word) ([]string, error) {
	fields, err := c.expandToFields(w.Tok.Parts, false)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, fb := range fields {
		out = append(out, c.finishField(fb, true)...)
	}
	return out, nil
}

// WordSingle expands w as a single field (no splitting, no globbing), as
// required for the right-hand side of an assignment.
func (c *Context) WordSingle(w *ast.Word) (string, error) {
	fields, err := c.expandToFields(w.Tok.Parts, false)
	if err != nil {
		return "", err
	}
	var sb []byte
	for _, fb := range fields {
		for _, r := range fb.runs {
			sb = append(sb, r.text...)
		}
	}
	return string(sb), nil
}

// expandToFields runs steps 1-4 over parts (tilde, parameter, command sub,
// arithmetic), producing a list of field builders. More than one builder
// results only from an unescaped double-quoted "$@" expansion, which POSIX
// requires to force field boundaries at each positional parameter.
func (c *Context) expandToFields(parts []lexer.Part, quotedOuter bool) ([]*fieldBuilder, error) {
	parts = expandTildes(parts, quotedOuter, c)
	fields := []*fieldBuilder{{}}
	cur := func() *fieldBuilder { return fields[len(fields)-1] }

	for _, part := range parts {
		switch part.Kind {
		case lexer.PartLiteral:
			cur().add(part.Text, quotedOuter)
		case lexer.PartSingleQuoted:
			cur().add(part.Text, true)
		case lexer.PartDoubleQuoted:
			sub, err := c.expandToFields(part.Parts, true)
			if err != nil {
				return nil, err
			}
			// "$@" inside double quotes is the only construct allowed to
			// introduce extra field boundaries; everything else collapses
			// back into a single run appended to the current field.
			if len(sub) > 1 {
				cur().runs = append(cur().runs, sub[0].runs...)
				cur().forceKeep = cur().forceKeep || sub[0].forceKeep
				for _, mid := range sub[1 : len(sub)-1] {
					fields = append(fields, mid)
				}
				fields = append(fields, &fieldBuilder{forceKeep: sub[len(sub)-1].forceKeep})
				cur().runs = append(cur().runs, sub[len(sub)-1].runs...)
			} else if len(sub) == 1 {
				cur().runs = append(cur().runs, sub[0].runs...)
				cur().forceKeep = cur().forceKeep || sub[0].forceKeep || len(part.Parts) == 0
			}
		case lexer.PartParam, lexer.PartBraced:
			val, atFields, isAt, err := c.expandParamPart(part, quotedOuter)
			if err != nil {
				return nil, err
			}
			if isAt && quotedOuter {
				if len(atFields) == 0 {
					continue
				}
				// The first positional parameter joins whatever text
				// precedes "$@" in this field; the last stays the open
				// field so trailing text joins it too. Everything between
				// is a field of its own.
				cur().add(atFields[0], true)
				for i := 1; i < len(atFields); i++ {
					fields = append(fields, &fieldBuilder{})
					cur().add(atFields[i], true)
				}
				continue
			}
			cur().add(val, quotedOuter)
		case lexer.PartCommandSub:
			out, _, err := c.Runner.RunCapture(part.Text)
			if err != nil {
				return nil, errors.Wrap(err, "command substitution")
			}
			cur().add(string(stripTrailingNewlines(out)), quotedOuter)
		case lexer.PartArithSub:
			n, err := arith.Eval(part.Text, c.Vars)
			if err != nil {
				return nil, errors.Wrap(err, "arithmetic expansion")
			}
			cur().add(strconv.FormatInt(n, 10), quotedOuter)
		}
	}
	// Drop a trailing empty builder left over from a "$@" boundary that
	// ended the word, matching POSIX's "the last field just closes".
	if len(fields) > 1 && len(cur().runs) == 0 {
		fields = fields[:len(fields)-1]
	}
	return fields, nil
}

func stripTrailingNewlines(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == '\n' {
		i--
	}
	return b[:i]
}
