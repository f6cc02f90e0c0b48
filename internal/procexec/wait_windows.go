//go:build windows

package procexec

import "os"

func exitCodeFromState(state *os.ProcessState) int {
	return state.ExitCode()
}
