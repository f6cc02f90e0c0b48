// Package interp implements the stack-structured execution frame engine:
// the policy-driven push/execute/pop cycle spec §4.6 describes, walking the
// AST the parser produced.
package interp

import (
	"github.com/opensh/sh/internal/alias"
	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/lexer"
	"github.com/opensh/sh/internal/parser"
	"github.com/opensh/sh/internal/shellerr"
)

// parseSource lexes, alias-expands (against f.Aliases) and parses src,
// producing a Program ready to run in f. Shared by "." and "eval".
func parseSource(f *Frame, src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	toks, err = alias.Expand(toks, f.Aliases)
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

// RunProgram executes every complete command in prog against f in order,
// returning the exit status of the last one run. A ctrlFlow of kind
// ctrlExit unwinds all the way out to the caller (cmd/sh maps it to the
// process exit code); any other ctrlFlow reaching here is a bug (a
// break/continue/return that escaped its catching frame) and is reported
// through shellerr rather than panicking the process.
func RunProgram(f *Frame, prog *ast.Program) (int, error) {
	status := 0
	for _, cc := range prog.Commands {
		s, err := runList(f, cc.List, false)
		status = s
		if err != nil {
			if cf, ok := asCtrlFlow(err); ok {
				if cf.kind == ctrlExit {
					return cf.n, err
				}
				return status, shellerr.Newf(shellerr.KindExecution, "%s outside a function or loop", cf.Error())
			}
			return status, err
		}
	}
	return status, nil
}

// runList executes every AndOr in l in sequence, applying the `;`/`&`
// separators: a `&`-terminated AndOr is backgrounded (runBackground) rather
// than awaited. tested suppresses errexit for every AndOr in this list,
// since runList is reused for if/while/until conditions, which spec §5's
// "Transactions" note exempts from -e.
func runList(f *Frame, l *ast.List, tested bool) (int, error) {
	status := 0
	for i, ao := range l.AndOrs {
		bg := i < len(l.Background) && l.Background[i]
		if bg {
			runBackground(f, ao)
			status = 0
			continue
		}
		s, err := runAndOr(f, ao, tested)
		status = s
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

// runAndOr executes a left-associative &&/|| chain. errexit is only
// considered for the final pipeline run in the chain: an earlier one is, by
// construction, followed by && or ||, which POSIX exempts.
func runAndOr(f *Frame, ao *ast.AndOr, tested bool) (int, error) {
	status := 0
	for i, p := range ao.Pipelines {
		if i > 0 {
			switch ao.Ops[i-1] {
			case ast.AndOrAnd:
				if status != 0 {
					return status, nil
				}
			case ast.AndOrOr:
				if status == 0 {
					return status, nil
				}
			}
		}
		s, err := runPipeline(f, p)
		status = s
		if err != nil {
			return status, err
		}
		isLast := i == len(ao.Pipelines)-1
		if isLast && !tested {
			if cf := f.maybeErrExit(status); cf != nil {
				return status, cf
			}
		}
	}
	return status, nil
}

// maybeErrExit returns a ctrlExit ctrlFlow if set -e is on and status is
// non-zero, nil otherwise.
func (f *Frame) maybeErrExit(status int) *ctrlFlow {
	if f.Options.ErrExit && status != 0 {
		return &ctrlFlow{kind: ctrlExit, n: status}
	}
	return nil
}

// runCommand dispatches on the concrete Command type, pushing a new frame
// for the constructs the policy table gives their own frame type.
func runCommand(f *Frame, c ast.Command) (int, error) {
	switch v := c.(type) {
	case *ast.SimpleCommand:
		return runSimpleCommand(f, v)
	case *ast.Subshell:
		return runSubshell(f, v)
	case *ast.BraceGroup:
		return runBraceGroup(f, v)
	case *ast.IfClause:
		return runIf(f, v)
	case *ast.WhileLoop:
		return runWhile(f, v)
	case *ast.ForLoop:
		return runFor(f, v)
	case *ast.CaseClause:
		return runCase(f, v)
	case *ast.FunctionDef:
		f.Funcs.Define(v.Name, v.Body, v.Redirs)
		return 0, nil
	}
	return 1, shellerr.Newf(shellerr.KindExecution, "unsupported command node %T", c)
}

func runSubshell(f *Frame, s *ast.Subshell) (int, error) {
	child := newChild(f, SubshellFrame)
	defer child.pop()
	if err := applyRedirs(child, s.Redirs); err != nil {
		return 1, err
	}
	status, err := runList(child, s.Body, false)
	if cf, ok := asCtrlFlow(err); ok {
		if cf.kind == ctrlExit {
			return cf.n, nil // a subshell's "exit" only exits the subshell
		}
		return status, nil
	}
	return status, err
}

func runBraceGroup(f *Frame, b *ast.BraceGroup) (int, error) {
	child := newChild(f, BraceGroupFrame)
	defer func() {
		child.runExitTrap()
		child.pop()
	}()
	if err := applyRedirs(child, b.Redirs); err != nil {
		return 1, err
	}
	return runList(child, b.Body, false)
}

func runIf(f *Frame, n *ast.IfClause) (int, error) {
	child := newChild(f, CaseFrame)
	defer child.pop()
	if err := applyRedirs(child, n.Redirs); err != nil {
		return 1, err
	}
	for i, cond := range n.Conds {
		cs, err := runList(child, cond, true)
		if err != nil {
			return cs, err
		}
		if cs == 0 {
			return runList(child, n.Bodies[i], false)
		}
	}
	if n.Else != nil {
		return runList(child, n.Else, false)
	}
	return 0, nil
}

func runWhile(f *Frame, n *ast.WhileLoop) (int, error) {
	child := newChild(f, LoopFrame)
	defer child.pop()
	if err := applyRedirs(child, n.Redirs); err != nil {
		return 1, err
	}
	status := 0
	for {
		cs, err := runList(child, n.Cond, true)
		if err != nil {
			return cs, err
		}
		want := cs == 0
		if n.Until {
			want = cs != 0
		}
		if !want {
			break
		}
		s, err := runList(child, n.Body, false)
		status = s
		if err != nil {
			if cf, ok := asCtrlFlow(err); ok {
				if stop, outErr := catchLoopSignal(cf, &status); stop {
					return status, outErr
				}
				continue
			}
			return status, err
		}
	}
	return status, nil
}

func runFor(f *Frame, n *ast.ForLoop) (int, error) {
	child := newChild(f, LoopFrame)
	defer child.pop()
	if err := applyRedirs(child, n.Redirs); err != nil {
		return 1, err
	}
	var words []string
	if n.HasIn {
		for _, w := range n.Words {
			fs, err := wordCtx(child).Word(w)
			if err != nil {
				return 1, shellerr.Wrap(shellerr.KindExpansion, err, "for")
			}
			words = append(words, fs...)
		}
	} else {
		words = child.Params.All()
	}
	status := 0
	for _, w := range words {
		if err := child.Vars.Set(n.Name, w); err != nil {
			return 1, shellerr.Wrap(shellerr.KindExecution, err, "for")
		}
		s, err := runList(child, n.Body, false)
		status = s
		if err != nil {
			if cf, ok := asCtrlFlow(err); ok {
				if stop, outErr := catchLoopSignal(cf, &status); stop {
					return status, outErr
				}
				continue
			}
			return status, err
		}
	}
	return status, nil
}

// catchLoopSignal interprets a break/continue signal reaching a loop frame.
// A signal aimed at this loop (n <= 1) is consumed: continue returns
// stop=false so the loop goes on with its next iteration, break returns
// stop=true with a nil error so the loop ends. A signal aimed at an outer
// loop returns stop=true and a new signal with n-1 for the enclosing loop.
// Any other ctrlFlow kind (return/exit) is not ours to catch: stop=true and
// propagate it.
func catchLoopSignal(cf *ctrlFlow, status *int) (stop bool, err error) {
	switch cf.kind {
	case ctrlBreak:
		if cf.n <= 1 {
			return true, nil
		}
		return true, &ctrlFlow{kind: ctrlBreak, n: cf.n - 1}
	case ctrlContinue:
		if cf.n <= 1 {
			return false, nil
		}
		return true, &ctrlFlow{kind: ctrlContinue, n: cf.n - 1}
	}
	return true, cf
}

func runCase(f *Frame, n *ast.CaseClause) (int, error) {
	child := newChild(f, CaseFrame)
	defer child.pop()
	if err := applyRedirs(child, n.Redirs); err != nil {
		return 1, err
	}
	subject, err := wordCtx(child).WordSingle(n.Word)
	if err != nil {
		return 1, shellerr.Wrap(shellerr.KindExpansion, err, "case")
	}
	for i := 0; i < len(n.Items); i++ {
		item := n.Items[i]
		if !caseItemMatches(child, item, subject) {
			continue
		}
		status, err := runList(child, item.Body, false)
		for err == nil && item.FallThrough && i+1 < len(n.Items) {
			i++
			item = n.Items[i]
			status, err = runList(child, item.Body, false)
		}
		return status, err
	}
	return 0, nil
}

func caseItemMatches(f *Frame, item *ast.CaseItem, subject string) bool {
	for _, pw := range item.Patterns {
		pat, err := wordCtx(f).WordSingle(pw)
		if err != nil {
			continue
		}
		if matchPattern(pat, subject) {
			return true
		}
	}
	return false
}
