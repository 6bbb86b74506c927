//go:build windows

package spawn

import "os"

// sendGracefulStop terminates the module. Windows has no SIGTERM; Kill calls
// TerminateProcess directly.
func sendGracefulStop(proc *os.Process) error {
	return proc.Kill()
}
