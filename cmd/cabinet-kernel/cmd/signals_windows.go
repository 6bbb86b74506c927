//go:build windows

package cmd

import "os"

// gracefulSignals returns the OS signals to capture for graceful shutdown.
// SIGTERM does not exist on Windows; only interrupt is captured.
func gracefulSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
