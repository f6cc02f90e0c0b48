package interp

import (
	"io"
	"os"

	"github.com/opensh/sh/internal/alias"
	"github.com/opensh/sh/internal/lexer"
	"github.com/opensh/sh/internal/parser"
)

// subshellRunner adapts *Frame to expand.Runner: command substitution runs
// its source in a COPY-policy Subshell frame (spec §4.4's "most command
// substitutions execute in forked children" — approximated in-process since
// Go has no fork, see DESIGN.md) with stdout captured through a pipe
// instead of inherited.
type subshellRunner Frame

// RunCapture parses and executes src as a fresh program, returning
// everything written to its stdout (trailing newlines are stripped by the
// caller, expand.Word's step 3).
func (r *subshellRunner) RunCapture(src string) ([]byte, int, error) {
	f := (*Frame)(r)
	child := newChild(f, SubshellFrame)
	defer child.pop()

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, -1, err
	}
	child.Stdout = pw

	done := make(chan []byte, 1)
	go func() {
		buf, _ := io.ReadAll(pr)
		done <- buf
	}()

	toks, lexErr := lexer.Tokenize(src)
	var status int
	var runErr error
	if lexErr != nil {
		runErr = lexErr
	} else {
		toks, runErr = alias.Expand(toks, child.Aliases)
	}
	if runErr == nil {
		prog, perr := parser.Parse(toks)
		if perr != nil {
			runErr = perr
		} else {
			status, runErr = RunProgram(child, prog)
			if cf, ok := asCtrlFlow(runErr); ok {
				if cf.kind == ctrlExit {
					status = cf.n
				}
				runErr = nil
			}
		}
	}

	pw.Close()
	out := <-done
	pr.Close()
	if runErr != nil {
		return out, 1, runErr
	}
	return out, status, nil
}
