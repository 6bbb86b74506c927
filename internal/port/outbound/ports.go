// Package outbound defines the ports the kernel drives: module invocation,
// audit persistence, and status publication. Interfaces live here per
// hexagonal convention; adapters implement them.
package outbound

import (
	"context"
	"time"

	"github.com/cabinet-platform/kernel/internal/domain/audit"
	"github.com/cabinet-platform/kernel/internal/domain/sandbox"
	"github.com/cabinet-platform/kernel/internal/domain/status"
)

// ModuleInvoker executes one module call inside the process-isolation
// primitive. Implementations own timeout enforcement: when the module runs
// past limits.Timeout() they must terminate it (SIGTERM, then SIGKILL) and
// return a TIMEOUT kernel error.
type ModuleInvoker interface {
	// Invoke sends payload to the module's endpoint and returns its raw
	// output bytes.
	Invoke(ctx context.Context, moduleID, endpoint string, payload []byte, limits *sandbox.ModuleLimits) ([]byte, error)
}

// AuditSink persists sanitized audit events. Implementations must serialize
// appends and write each record as one whole line.
type AuditSink interface {
	// Append stores one event. The event is already sanitized.
	Append(ctx context.Context, event audit.Event) error

	// Close flushes and releases the sink.
	Close() error
}

// AuditQuery describes an audit log query.
type AuditQuery struct {
	Start      time.Time
	End        time.Time
	ActorID    string
	Capability string
	EventType  string
	Result     string
	Limit      int
}

// AuditQueryStore provides read access to persisted audit events. Separate
// from AuditSink: the write path never depends on query capability.
type AuditQueryStore interface {
	// Query returns events matching q, oldest first.
	Query(ctx context.Context, q AuditQuery) ([]audit.Event, error)

	// Close releases the store.
	Close() error
}

// StatusWriter publishes the module status snapshot.
type StatusWriter interface {
	// Write atomically replaces the status document.
	Write(ctx context.Context, snapshot status.Snapshot) error
}
