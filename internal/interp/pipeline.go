package interp

import (
	"os"
	"sync"

	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/job"
	"github.com/opensh/sh/internal/shellerr"
)

func negateStatus(status int) int {
	if status == 0 {
		return 1
	}
	return 0
}

// runPipeline implements spec §4.6's "Pipelines": a single-command pipeline
// runs directly in f (no fork boundary, so control flow propagates
// normally); a multi-command pipeline connects every member through
// anonymous pipes and runs them concurrently, each in its own
// PipelineMember (COPY-policy) frame.
func runPipeline(f *Frame, p *ast.Pipeline) (int, error) {
	if len(p.Commands) == 1 {
		status, err := runCommand(f, p.Commands[0])
		if err != nil {
			return status, err
		}
		if p.Negate {
			status = negateStatus(status)
		}
		return status, nil
	}

	n := len(p.Commands)
	readers := make([]*os.File, n)
	writers := make([]*os.File, n)
	for i := 0; i < n-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			return 1, shellerr.Wrap(shellerr.KindExecution, err, "pipeline")
		}
		readers[i+1] = pr
		writers[i] = pw
	}

	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		stdin := f.Stdin
		if readers[i] != nil {
			stdin = readers[i]
		}
		stdout := f.Stdout
		if writers[i] != nil {
			stdout = writers[i]
		}
		go func(i int, cmd ast.Command, stdin, stdout *os.File) {
			defer wg.Done()
			status, _ := runPipelineMember(f, cmd, stdin, stdout)
			if readers[i] != nil {
				stdin.Close()
			}
			if writers[i] != nil {
				stdout.Close()
			}
			statuses[i] = status
		}(i, p.Commands[i], stdin, stdout)
	}
	wg.Wait()

	status := statuses[n-1]
	if f.Options.PipeFail {
		for i := n - 1; i >= 0; i-- {
			if statuses[i] != 0 {
				status = statuses[i]
				break
			}
		}
	}
	if p.Negate {
		status = negateStatus(status)
	}
	return status, nil
}

// runPipelineMember runs cmd in a fresh COPY-policy frame wired to stdin/
// stdout, translating any escaping control-flow signal into a plain exit
// status: a pipeline member is a fork boundary, so break/continue/return/
// exit inside it never reaches the parent shell, exactly like Subshell.
func runPipelineMember(parent *Frame, cmd ast.Command, stdin, stdout *os.File) (int, error) {
	child := newChild(parent, PipelineMemberFrame)
	child.Stdin, child.Stdout = stdin, stdout
	defer child.pop()
	status, err := runCommand(child, cmd)
	if cf, ok := asCtrlFlow(err); ok {
		if cf.kind == ctrlExit || cf.kind == ctrlReturn {
			return cf.n, nil
		}
		return 0, nil
	}
	return status, err
}

// runBackground starts ao running asynchronously in a COPY-policy frame
// (spec §4.6's BackgroundJob row), registers it in the job store with state
// RUNNING, and sets $! to its synthetic pid. Go has no fork, so a
// background "process" here is a goroutine over a private frame copy
// rather than a real child process — see DESIGN.md.
func runBackground(f *Frame, ao *ast.AndOr) {
	child := newChild(f, SubshellFrame)
	pid := f.Shell.nextBgPid()
	proc := job.NewProcess("background job", pid)
	j := &job.Job{Processes: []*job.Process{proc}, IsBackground: true}
	f.Shell.Jobs.Add(j)
	f.LastBgPid = pid

	go func() {
		defer child.pop()
		status, err := runAndOr(child, ao, false)
		if cf, ok := asCtrlFlow(err); ok {
			status = cf.n
		}
		proc.SetStatus(job.StateDone, status)
	}()
}

func (sh *Shell) nextBgPid() int {
	sh.bgPidMu.Lock()
	defer sh.bgPidMu.Unlock()
	sh.bgPidSeq++
	return sh.bgPidSeq
}
