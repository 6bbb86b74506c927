package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
	"github.com/cabinet-platform/kernel/internal/domain/status"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

// statusStripes is the lock stripe count. Updates for the same module always
// hit the same stripe; different modules rarely contend.
const statusStripes = 16

type statusStripe struct {
	mu      sync.Mutex
	modules map[string]*status.ModuleStatus
}

// StatusService aggregates per-module invocation statistics and publishes
// the snapshot after every update. Mutual exclusion is striped by module ID.
type StatusService struct {
	stripes [statusStripes]statusStripe
	writer  outbound.StatusWriter
	logger  *slog.Logger
	started time.Time

	// writeMu serializes snapshot publication so concurrent updates cannot
	// interleave file replacements out of order.
	writeMu sync.Mutex
}

// NewStatusService builds a status service publishing through writer.
func NewStatusService(writer outbound.StatusWriter, logger *slog.Logger) *StatusService {
	s := &StatusService{
		writer:  writer,
		logger:  logger,
		started: time.Now().UTC(),
	}
	for i := range s.stripes {
		s.stripes[i].modules = make(map[string]*status.ModuleStatus)
	}
	return s
}

func (s *StatusService) stripeFor(moduleID string) *statusStripe {
	return &s.stripes[xxhash.Sum64String(moduleID)%statusStripes]
}

// RecordInvocation folds one invocation into the module's status and
// publishes the updated snapshot. Publication failures are logged, never
// propagated: status is advisory, the audit trail is authoritative.
func (s *StatusService) RecordInvocation(ctx context.Context, moduleID string, executionTime time.Duration, success bool, errMsg string) {
	now := time.Now().UTC()

	stripe := s.stripeFor(moduleID)
	stripe.mu.Lock()
	entry, ok := stripe.modules[moduleID]
	if !ok {
		entry = &status.ModuleStatus{
			ModuleID: moduleID,
			Status:   status.StateIdle,
		}
		stripe.modules[moduleID] = entry
	}
	entry.RecordInvocation(executionTime.Milliseconds(), success, errMsg, now)
	entry.UptimeSeconds = int64(now.Sub(s.started).Seconds())
	stripe.mu.Unlock()

	s.publish(ctx)
}

// Snapshot copies the current per-module state.
func (s *StatusService) Snapshot() status.Snapshot {
	modules := make(map[string]status.ModuleStatus)
	for i := range s.stripes {
		stripe := &s.stripes[i]
		stripe.mu.Lock()
		for id, entry := range stripe.modules {
			modules[id] = *entry
		}
		stripe.mu.Unlock()
	}
	return status.Snapshot{
		Timestamp:     time.Now().UTC(),
		KernelVersion: ipc.KernelVersion,
		Modules:       modules,
	}
}

func (s *StatusService) publish(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	snapshot := s.Snapshot()
	if err := s.writer.Write(ctx, snapshot); err != nil {
		s.logger.Error("status publish failed", "error", err)
	}
}
