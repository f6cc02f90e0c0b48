// Package procexec launches external commands: pipeline members, background
// jobs, and the child processes behind command substitution. It is
// generalized from lenticularis39-mk's recipe.go subprocess() helper (manual
// os.Pipe/os.ProcAttr/os.StartProcess, with goroutines feeding stdin and
// draining stdout) into a launcher that accepts arbitrary pre-opened file
// descriptors instead of always wiring up a fresh stdin/stdout pipe pair.
package procexec

import (
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// Spec describes one process to launch.
type Spec struct {
	Path string
	Args []string // argv, including argv[0]
	Env  []string
	Dir  string

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Process is a launched child process.
type Process struct {
	Pid   int
	proc  *os.Process
}

// Start launches spec as a child process. The caller owns and must close
// any *os.File it passed in Stdin/Stdout/Stderr once the child has them.
func Start(spec Spec) (*Process, error) {
	path := spec.Path
	if path == "" {
		return nil, errors.New("procexec: empty program path")
	}
	attr := &os.ProcAttr{
		Dir:   spec.Dir,
		Env:   spec.Env,
		Files: []*os.File{fileOr(spec.Stdin, os.Stdin), fileOr(spec.Stdout, os.Stdout), fileOr(spec.Stderr, os.Stderr)},
	}
	proc, err := os.StartProcess(path, spec.Args, attr)
	if err != nil {
		return nil, err
	}
	return &Process{Pid: proc.Pid, proc: proc}, nil
}

func fileOr(f *os.File, def *os.File) *os.File {
	if f != nil {
		return f
	}
	return def
}

// Wait blocks until the process exits, returning its exit status (or
// 128+signal for a signal death, matching spec §6's exit-code mapping).
func (p *Process) Wait() (exitCode int, err error) {
	state, err := p.proc.Wait()
	if err != nil {
		return -1, err
	}
	return exitStatus(state), nil
}

// Signal delivers a signal to the process, used by the "kill" built-in.
func (p *Process) Signal(sig os.Signal) error {
	return p.proc.Signal(sig)
}

// LookPath resolves a command name against PATH, matching the shell's own
// "regular built-in / PATH search" dispatch order (spec §4.6).
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// CaptureOutput runs spec to completion with a fresh stdout pipe, returning
// everything written to it. This is the command-substitution launcher: a
// goroutine drains the pipe concurrently with the child running, exactly as
// the teacher's subprocess() helper does for its capture_out case, so a
// child that fills the pipe buffer before exiting cannot deadlock against
// the parent.
func CaptureOutput(spec Spec) (output []byte, exitCode int, err error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, -1, err
	}
	spec.Stdout = pw

	done := make(chan []byte, 1)
	readErr := make(chan error, 1)
	go func() {
		buf, err := io.ReadAll(pr)
		readErr <- err
		done <- buf
	}()

	proc, err := Start(spec)
	pw.Close()
	if err != nil {
		pr.Close()
		return nil, -1, err
	}

	exitCode, waitErr := proc.Wait()
	out := <-done
	if err := <-readErr; err != nil && waitErr == nil {
		waitErr = err
	}
	pr.Close()
	return out, exitCode, waitErr
}

// StripTrailingNewlines removes every trailing '\n' byte, the rule spec
// §4.4 step 3 requires of captured command-substitution output.
func StripTrailingNewlines(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == '\n' {
		i--
	}
	return b[:i]
}

func exitStatus(state *os.ProcessState) int {
	return exitCodeFromState(state)
}
