package interp

import (
	"github.com/opensh/sh/internal/expand"
	"github.com/opensh/sh/internal/glob"
)

// wordCtx builds the expand.Context word expansion needs from f's current
// state. A fresh Context is built per call rather than cached on Frame,
// since LastExit/LastBgPid change between commands and expand.Context is
// cheap to construct.
func wordCtx(f *Frame) *expand.Context {
	return &expand.Context{
		Vars:      f.Vars,
		Params:    f.Params,
		LastExit:  f.LastExit,
		LastBgPid: f.LastBgPid,
		ShellFlags: f.Options.Flags(),
		ShellPid:  f.Shell.pid,
		Runner:    (*subshellRunner)(f),
	}
}

func assignCtx(f *Frame) *expand.Context {
	c := wordCtx(f)
	c.AssignmentValue = true
	return c
}

// matchPattern matches a case pattern (no PATHNAME/PERIOD restriction: case
// patterns are plain glob patterns over an arbitrary string, not a path).
func matchPattern(pattern, text string) bool {
	return glob.Match(pattern, text, 0)
}
