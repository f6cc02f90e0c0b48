package interp

import (
	"fmt"
	"strings"

	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/procexec"
	"github.com/opensh/sh/internal/shellerr"
)

// runSimpleCommand implements spec §4.6's "Execute" step for a simple
// command: expand every word, evaluate assignments, then dispatch to
// {special built-in, function, regular built-in, PATH search} in that
// fixed order.
func runSimpleCommand(f *Frame, sc *ast.SimpleCommand) (int, error) {
	if f.Options.NoExec {
		return 0, nil
	}

	if err := applyRedirs(f, sc.Redirs); err != nil {
		f.FDs.Restore()
		return 1, err
	}
	defer f.FDs.Restore()

	argv, err := expandArgv(f, sc)
	if err != nil {
		return 1, shellerr.Wrap(shellerr.KindExpansion, err, "command")
	}

	if len(argv) == 0 {
		// Bare assignment-only command: persists directly into this frame's
		// variable store, per spec §4.6's "Variable assignments" rule.
		for _, a := range sc.Assigns {
			v, err := assignCtx(f).WordSingle(a.Value)
			if err != nil {
				return 1, shellerr.Wrap(shellerr.KindExpansion, err, "assignment")
			}
			if err := f.Vars.Set(a.Name, v); err != nil {
				return 1, shellerr.Wrap(shellerr.KindExecution, err, "assignment")
			}
		}
		return 0, nil
	}

	name := argv[0]
	args := argv[1:]

	if f.Options.Xtrace {
		fmt.Fprintln(f.Stderr, "+ "+strings.Join(argv, " "))
	}

	if fn, isSpecial := specialBuiltins[name]; isSpecial {
		for _, a := range sc.Assigns {
			v, err := assignCtx(f).WordSingle(a.Value)
			if err != nil {
				return 1, shellerr.Wrap(shellerr.KindExpansion, err, "assignment")
			}
			if err := f.Vars.Set(a.Name, v); err != nil {
				return 1, shellerr.Wrap(shellerr.KindExecution, err, "assignment")
			}
		}
		status, err := fn(f, args)
		f.LastExit = status
		return status, err
	}

	if fnDef, ok := f.Funcs.Get(name); ok {
		for _, a := range sc.Assigns {
			v, err := assignCtx(f).WordSingle(a.Value)
			if err != nil {
				return 1, shellerr.Wrap(shellerr.KindExpansion, err, "assignment")
			}
			if err := f.Vars.Set(a.Name, v); err != nil {
				return 1, shellerr.Wrap(shellerr.KindExecution, err, "assignment")
			}
		}
		status, err := callFunction(f, fnDef, args)
		f.LastExit = status
		return status, err
	}

	saves, err := tempAssign(f, sc.Assigns)
	if err != nil {
		return 1, shellerr.Wrap(shellerr.KindExpansion, err, "assignment")
	}
	defer restoreAssign(f, saves)

	if fn, isRegular := regularBuiltins[name]; isRegular {
		status, err := fn(f, args)
		f.LastExit = status
		return status, err
	}

	status, err := runExternal(f, name, args)
	f.LastExit = status
	return status, err
}

// expandArgv expands the command-name word (if any) followed by every
// argument word into one flat argv, per step 5's field-splitting rule: a
// single word can expand to zero, one, or many argv entries.
func expandArgv(f *Frame, sc *ast.SimpleCommand) ([]string, error) {
	var argv []string
	if sc.Name != nil {
		fs, err := wordCtx(f).Word(sc.Name)
		if err != nil {
			return nil, err
		}
		argv = append(argv, fs...)
	}
	for _, w := range sc.Args {
		fs, err := wordCtx(f).Word(w)
		if err != nil {
			return nil, err
		}
		argv = append(argv, fs...)
	}
	return argv, nil
}

// tempAssign applies assigns to f.Vars, exported for the duration of the
// command about to run, remembering prior state so restoreAssign can put it
// back exactly — the "exported into the environment of the executed process
// only" rule for commands that are neither a special built-in nor a
// function.
func tempAssign(f *Frame, assigns []ast.AssignWord) ([]localSave, error) {
	var saves []localSave
	for _, a := range assigns {
		prev, had := f.Vars.Get(a.Name)
		saves = append(saves, localSave{name: a.Name, had: had, prev: prev})
		v, err := assignCtx(f).WordSingle(a.Value)
		if err != nil {
			return saves, err
		}
		if err := f.Vars.Set(a.Name, v); err != nil {
			return saves, err
		}
		f.Vars.SetExported(a.Name, true)
	}
	return saves, nil
}

func restoreAssign(f *Frame, saves []localSave) {
	for i := len(saves) - 1; i >= 0; i-- {
		s := saves[i]
		if s.had {
			f.Vars.Define(s.prev)
		} else {
			f.Vars.Unset(s.name)
		}
	}
}

// runExternal resolves name against PATH and runs it to completion with
// f's current stdin/stdout/stderr, matching spec §6's exit-code mapping for
// "not found" (127) and "found but not executable" (126).
func runExternal(f *Frame, name string, args []string) (int, error) {
	path, err := procexec.LookPath(name)
	if err != nil {
		fmt.Fprintf(f.Stderr, "%s: command not found\n", name)
		return 127, nil
	}
	proc, err := procexec.Start(procexec.Spec{
		Path:   path,
		Args:   append([]string{name}, args...),
		Env:    f.Vars.Exported(),
		Dir:    f.Cwd,
		Stdin:  f.Stdin,
		Stdout: f.Stdout,
		Stderr: f.Stderr,
	})
	if err != nil {
		fmt.Fprintf(f.Stderr, "%s: %v\n", name, err)
		return 126, nil
	}
	code, err := proc.Wait()
	if err != nil {
		return 1, shellerr.Wrap(shellerr.KindExecution, err, name)
	}
	return code, nil
}
