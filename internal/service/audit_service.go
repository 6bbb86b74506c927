// Package service contains the kernel use cases: the request pipeline, audit
// emission, and module status aggregation.
package service

import (
	"context"
	"log/slog"

	"github.com/cabinet-platform/kernel/internal/domain/audit"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

// AuditService sanitizes events and fans them out to the configured sinks.
// Persistence failures never fail the request: they are logged and counted.
type AuditService struct {
	sinks  []outbound.AuditSink
	logger *slog.Logger
	// onDrop is called once per sink failure. Wired to the audit drop
	// counter in serve mode; may be nil.
	onDrop func()
}

// NewAuditService builds an audit service over the given sinks.
func NewAuditService(logger *slog.Logger, onDrop func(), sinks ...outbound.AuditSink) *AuditService {
	return &AuditService{
		sinks:  sinks,
		logger: logger,
		onDrop: onDrop,
	}
}

// Record sanitizes the event and appends it to every sink.
func (s *AuditService) Record(ctx context.Context, event audit.Event) {
	sanitized := audit.Sanitize(event)
	for _, sink := range s.sinks {
		if err := sink.Append(ctx, sanitized); err != nil {
			s.logger.Error("audit append failed",
				"event_type", sanitized.EventType,
				"error", err,
			)
			if s.onDrop != nil {
				s.onDrop()
			}
		}
	}
}

// Close closes every sink.
func (s *AuditService) Close() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
