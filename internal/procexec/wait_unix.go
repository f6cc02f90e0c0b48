//go:build !windows

package procexec

import (
	"os"
	"syscall"
)

// exitCodeFromState implements spec §6's exit-code mapping: a signal death
// reports 128+signal number, a normal exit reports its status.
func exitCodeFromState(state *os.ProcessState) int {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return state.ExitCode()
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ws.ExitStatus()
}
