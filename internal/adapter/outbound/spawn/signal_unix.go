//go:build !windows

package spawn

import (
	"os"
	"syscall"
)

// sendGracefulStop sends SIGTERM so the module can flush before the kill
// grace expires.
func sendGracefulStop(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}
