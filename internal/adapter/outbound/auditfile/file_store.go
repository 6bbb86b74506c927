// Package auditfile persists audit events to the append-only JSONL trail:
// one canonical-JSON record per line, serialized writes, whole-line flushes.
package auditfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cabinet-platform/kernel/internal/domain/audit"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
	"github.com/cabinet-platform/kernel/pkg/canonical"
)

// FileAuditSink implements outbound.AuditSink on a single append-only file.
type FileAuditSink struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
	closed bool
}

// NewFileAuditSink opens (creating if needed) the audit trail at path. The
// parent directory is created with restricted permissions.
func NewFileAuditSink(path string, logger *slog.Logger) (*FileAuditSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileAuditSink{
		path:   path,
		file:   file,
		logger: logger,
	}, nil
}

// Append writes one sanitized event as a single canonical-JSON line. Appends
// are serialized under the sink's lock so records never interleave.
func (s *FileAuditSink) Append(ctx context.Context, event audit.Event) error {
	line, err := encodeEvent(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("audit sink is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Close syncs and closes the trail. Further appends fail.
func (s *FileAuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.file.Sync(); err != nil {
		s.logger.Warn("audit file sync failed", "error", err)
	}
	return s.file.Close()
}

// encodeEvent serializes an event to canonical JSON so equal events always
// produce identical lines.
func encodeEvent(event audit.Event) (string, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal audit record: %w", err)
	}
	line, err := canonical.EncodeBytes(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize audit record: %w", err)
	}
	return line, nil
}

var _ outbound.AuditSink = (*FileAuditSink)(nil)
