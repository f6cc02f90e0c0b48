package interp

import (
	"os"
	"sync"

	"github.com/opensh/sh/internal/alias"
	"github.com/opensh/sh/internal/job"
	"github.com/opensh/sh/internal/lexer"
	"github.com/opensh/sh/internal/parser"
	"github.com/opensh/sh/internal/shellerr"
)

// Shell is the process-wide state that sits above every frame: the job
// table (process-wide per spec §5's "Shared-resource policy"), the process
// pid for "$$", and the top-level frame every script/command runs under.
// cmd/sh constructs one Shell per invocation.
type Shell struct {
	Jobs *job.Store
	pid  int
	Top  *Frame

	bgPidMu  sync.Mutex
	bgPidSeq int
}

// NewShell creates a Shell with a fresh top-level frame, importing every
// NAME=value pair from the inherited process environment as an exported
// variable, per spec §6 "Environment".
func NewShell(arg0 string) *Shell {
	sh := &Shell{Jobs: job.NewStore(), pid: os.Getpid()}
	sh.Top = newTopLevel(sh, arg0)
	for _, kv := range os.Environ() {
		name, value, ok := cutOnceByte(kv, '=')
		if !ok {
			continue
		}
		sh.Top.Vars.Set(name, value)
		sh.Top.Vars.SetExported(name, true)
	}
	return sh
}

func cutOnceByte(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// RunString parses and executes src as a complete script, returning the
// exit status the process should report.
func (sh *Shell) RunString(src string) int {
	return sh.run(src)
}

// RunFile reads and executes the script at path.
func (sh *Shell) RunFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		shellerr.Newf(shellerr.KindExecution, "%v", err)
		return 127
	}
	return sh.run(string(data))
}

func (sh *Shell) run(src string) int {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		sh.reportError(err)
		return 2
	}
	toks, err = alias.Expand(toks, sh.Top.Aliases)
	if err != nil {
		sh.reportError(err)
		return 2
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		sh.reportError(err)
		return 2
	}
	status, err := RunProgram(sh.Top, prog)
	if err != nil {
		if cf, ok := asCtrlFlow(err); ok && cf.kind == ctrlExit {
			sh.Top.runExitTrap()
			return normalizeExit(cf.n)
		}
		sh.reportError(err)
		return 1
	}
	sh.Top.runExitTrap()
	return normalizeExit(status)
}

func (sh *Shell) reportError(err error) {
	os.Stderr.WriteString(sh.Top.Params.Arg0() + ": " + err.Error() + "\n")
}

func normalizeExit(status int) int {
	status %= 256
	if status < 0 {
		status += 256
	}
	return status
}
