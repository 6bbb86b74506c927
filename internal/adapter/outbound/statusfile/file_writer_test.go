package statusfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cabinet-platform/kernel/internal/domain/status"
)

func testSnapshot() status.Snapshot {
	return status.Snapshot{
		Timestamp:     time.Date(2026, 1, 9, 15, 0, 0, 0, time.UTC),
		KernelVersion: "v1.0.0",
		Modules: map[string]status.ModuleStatus{
			"storage": {
				ModuleID:           "storage",
				Status:             status.StateRunning,
				InvocationCount:    3,
				AvgExecutionTimeMS: 40,
			},
		},
	}
}

func TestFileStatusWriter_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "runtime_status.json")
	writer, err := NewFileStatusWriter(path)
	if err != nil {
		t.Fatalf("NewFileStatusWriter() error: %v", err)
	}

	if err := writer.Write(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read status file: %v", err)
	}

	// Pretty-printed.
	if !strings.Contains(string(data), "\n  ") {
		t.Error("status file is not indented")
	}

	var snapshot status.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("status file is not valid JSON: %v", err)
	}
	if snapshot.KernelVersion != "v1.0.0" {
		t.Errorf("kernel_version = %q, want v1.0.0", snapshot.KernelVersion)
	}
	if snapshot.Modules["storage"].InvocationCount != 3 {
		t.Errorf("invocation_count = %d, want 3", snapshot.Modules["storage"].InvocationCount)
	}
}

func TestFileStatusWriter_ReplacesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runtime_status.json")
	writer, err := NewFileStatusWriter(path)
	if err != nil {
		t.Fatalf("NewFileStatusWriter() error: %v", err)
	}
	ctx := context.Background()

	if err := writer.Write(ctx, testSnapshot()); err != nil {
		t.Fatalf("first Write() error: %v", err)
	}

	second := testSnapshot()
	second.Modules["pricing"] = status.ModuleStatus{ModuleID: "pricing", Status: status.StateIdle}
	if err := writer.Write(ctx, second); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}

	var snapshot status.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read status file: %v", err)
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(snapshot.Modules) != 2 {
		t.Errorf("got %d modules, want 2", len(snapshot.Modules))
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".status-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestFileStatusWriter_CancelledContext(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runtime_status.json")
	writer, err := NewFileStatusWriter(path)
	if err != nil {
		t.Fatalf("NewFileStatusWriter() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := writer.Write(ctx, testSnapshot()); err == nil {
		t.Error("Write() succeeded with a cancelled context")
	}
}
