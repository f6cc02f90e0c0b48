package interp

import (
	"github.com/opensh/sh/internal/alias"
	"github.com/opensh/sh/internal/lexer"
	"github.com/opensh/sh/internal/parser"
	"github.com/opensh/sh/internal/vars"
)

// callFunction invokes fn with args, per spec §4.6's Function row: the
// variable store is shared (with "local" shadowing layered on top via
// LocalSaves), positional parameters are COPYed and replaced with args,
// and a "return" inside the body is caught here rather than propagating
// further.
func callFunction(f *Frame, fn *vars.Function, args []string) (int, error) {
	child := newChild(f, FunctionFrame)
	child.Params.Set(args)
	defer func() {
		restoreAssign(child, child.LocalSaves)
		child.pop()
	}()

	if err := applyRedirs(child, fn.Redirs); err != nil {
		return 1, err
	}
	status, err := runCommand(child, fn.Body)
	if cf, ok := asCtrlFlow(err); ok {
		if cf.kind == ctrlReturn {
			return cf.n, nil
		}
		return status, err // break/continue/exit propagate past the function
	}
	return status, err
}

// runTrapText parses and executes a trap's command text in trapFrame,
// returning its exit status.
func runTrapText(trapFrame *Frame, text string) (int, error) {
	sh := trapFrame.Shell
	toks, err := lexer.Tokenize(text)
	if err != nil {
		return 1, err
	}
	toks, err = alias.Expand(toks, trapFrame.Aliases)
	if err != nil {
		return 1, err
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		return 1, err
	}
	status, err := RunProgram(trapFrame, prog)
	if cf, ok := asCtrlFlow(err); ok {
		if cf.kind == ctrlExit {
			sh.Top.runExitTrap()
		}
		return cf.n, nil
	}
	return status, err
}
