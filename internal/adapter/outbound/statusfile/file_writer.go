// Package statusfile publishes the module status snapshot as pretty-printed
// JSON, rewritten atomically on each update.
package statusfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cabinet-platform/kernel/internal/domain/status"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

// FileStatusWriter implements outbound.StatusWriter with a temp-file-and-
// rename replace so readers never observe a partial document.
type FileStatusWriter struct {
	path string
}

// NewFileStatusWriter prepares a writer targeting path, creating the parent
// directory if needed.
func NewFileStatusWriter(path string) (*FileStatusWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create status directory: %w", err)
	}
	return &FileStatusWriter{path: path}, nil
}

// Write atomically replaces the status file with the snapshot.
func (w *FileStatusWriter) Write(ctx context.Context, snapshot status.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".status-*")
	if err != nil {
		return fmt.Errorf("create status temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write status snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close status temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace status file: %w", err)
	}
	return nil
}

var _ outbound.StatusWriter = (*FileStatusWriter)(nil)
