package auditsqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cabinet-platform/kernel/internal/domain/audit"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

func newTestStore(t *testing.T) *SQLiteAuditStore {
	t.Helper()
	store, err := NewSQLiteAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewSQLiteAuditStore() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEvents(t *testing.T, store *SQLiteAuditStore) {
	t.Helper()
	ctx := context.Background()
	events := []audit.Event{
		audit.Authz("user-1", "admin", "storage.listings.create", true, ""),
		audit.Authz("user-2", "viewer", "storage.listings.delete", false, "capability missing"),
		audit.Routing("user-1", "admin", "storage.listings.create", "ui", "main_ui", "module", "storage", true, ""),
		audit.Execution("user-1", "admin", "storage.listings.create", true, 42, ""),
		audit.Execution("user-3", "editor", "pricing.calculate", false, 7, "TIMEOUT"),
	}
	for _, ev := range events {
		if err := store.Append(ctx, audit.Sanitize(ev)); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
}

func TestSQLiteAuditStore_AppendAndQueryAll(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedEvents(t, store)

	events, err := store.Query(context.Background(), outbound.AuditQuery{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}

	// Chronological (insert) order.
	if events[0].EventType != audit.EventTypeAuthorization {
		t.Errorf("first event type = %s, want authorization", events[0].EventType)
	}
	if events[3].Metadata == nil || events[3].Metadata.ExecutionTimeMS != 42 {
		t.Errorf("execution metadata not round-tripped: %+v", events[3].Metadata)
	}
}

func TestSQLiteAuditStore_QueryFilters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedEvents(t, store)
	ctx := context.Background()

	byActor, err := store.Query(ctx, outbound.AuditQuery{ActorID: "user-1"})
	if err != nil {
		t.Fatalf("Query(actor) error: %v", err)
	}
	if len(byActor) != 3 {
		t.Errorf("actor filter: got %d events, want 3", len(byActor))
	}

	denied, err := store.Query(ctx, outbound.AuditQuery{Result: "denied"})
	if err != nil {
		t.Fatalf("Query(denied) error: %v", err)
	}
	if len(denied) != 1 || denied[0].ActorID != "user-2" {
		t.Errorf("denied filter: %+v", denied)
	}

	executions, err := store.Query(ctx, outbound.AuditQuery{EventType: "execution"})
	if err != nil {
		t.Fatalf("Query(execution) error: %v", err)
	}
	if len(executions) != 2 {
		t.Errorf("event type filter: got %d events, want 2", len(executions))
	}

	byCapability, err := store.Query(ctx, outbound.AuditQuery{Capability: "pricing.calculate"})
	if err != nil {
		t.Fatalf("Query(capability) error: %v", err)
	}
	if len(byCapability) != 1 || byCapability[0].Metadata.ErrorCode != "TIMEOUT" {
		t.Errorf("capability filter: %+v", byCapability)
	}
}

func TestSQLiteAuditStore_QueryTimeRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedEvents(t, store)
	ctx := context.Background()

	past, err := store.Query(ctx, outbound.AuditQuery{
		End: time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Query(past) error: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("past range returned %d events, want 0", len(past))
	}

	recent, err := store.Query(ctx, outbound.AuditQuery{
		Start: time.Now().UTC().Add(-time.Hour),
		End:   time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query(recent) error: %v", err)
	}
	if len(recent) != 5 {
		t.Errorf("recent range returned %d events, want 5", len(recent))
	}
}

func TestSQLiteAuditStore_QueryLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedEvents(t, store)

	events, err := store.Query(context.Background(), outbound.AuditQuery{Limit: 2})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
