// Package spawn executes modules as child processes: payload on stdin,
// result on stdout, with the module's timeout enforced on the process.
package spawn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
	"github.com/cabinet-platform/kernel/internal/domain/sandbox"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

// killGrace is how long a module gets between the graceful stop signal and
// the hard kill.
const killGrace = 2 * time.Second

// ProcessInvoker implements outbound.ModuleInvoker by executing the module's
// invoke endpoint as a subprocess. The endpoint from the manifest is the
// executable path; the command payload travels on stdin and the result comes
// back on stdout. On timeout the process receives the graceful stop signal,
// then a kill after the grace period.
type ProcessInvoker struct {
	logger *slog.Logger
}

// NewProcessInvoker returns a subprocess-based invoker.
func NewProcessInvoker(logger *slog.Logger) *ProcessInvoker {
	return &ProcessInvoker{logger: logger}
}

// Invoke runs the module and returns its stdout bytes. Deadline overruns map
// to TIMEOUT; spawn faults map to INTERNAL. Module stderr is logged, never
// returned to the caller.
func (p *ProcessInvoker) Invoke(ctx context.Context, moduleID, endpoint string, payload []byte, limits *sandbox.ModuleLimits) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, limits.Timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, endpoint)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Graceful stop first; WaitDelay escalates to Kill.
	cmd.Cancel = func() error {
		return sendGracefulStop(cmd.Process)
	}
	cmd.WaitDelay = killGrace

	err := cmd.Run()
	if stderr.Len() > 0 {
		p.logger.Debug("module stderr",
			"module_id", moduleID,
			"bytes", stderr.Len(),
		)
	}

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, ipc.NewError(ipc.CodeTimeout,
				"module %q exceeded its %d ms deadline", moduleID, limits.TimeoutMS)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		p.logger.Error("module execution failed",
			"module_id", moduleID,
			"error", err,
		)
		return nil, &ipc.KernelError{
			Code:     ipc.CodeInternal,
			Message:  fmt.Sprintf("module %q execution failed", moduleID),
			Severity: ipc.SeverityError,
		}
	}

	return stdout.Bytes(), nil
}

var _ outbound.ModuleInvoker = (*ProcessInvoker)(nil)
