// Package auditsqlite mirrors audit events into a SQLite database so the
// trail can be queried by time range, actor, capability, and outcome without
// scanning the JSONL file. The JSONL trail stays authoritative; this store
// is an optional query mirror.
package auditsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cabinet-platform/kernel/internal/domain/audit"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp         TEXT NOT NULL,
	event_type        TEXT NOT NULL,
	actor_id          TEXT NOT NULL,
	actor_role        TEXT NOT NULL,
	capability        TEXT NOT NULL,
	result            TEXT NOT NULL,
	reason            TEXT NOT NULL DEFAULT '',
	from_type         TEXT NOT NULL DEFAULT '',
	from_id           TEXT NOT NULL DEFAULT '',
	to_type           TEXT NOT NULL DEFAULT '',
	to_id             TEXT NOT NULL DEFAULT '',
	execution_time_ms INTEGER NOT NULL DEFAULT 0,
	error_code        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events (timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_events_actor ON audit_events (actor_id, timestamp);
`

// defaultQueryLimit bounds unfiltered queries.
const defaultQueryLimit = 100

// SQLiteAuditStore implements outbound.AuditSink and outbound.AuditQueryStore
// on a local SQLite database.
type SQLiteAuditStore struct {
	db *sql.DB
}

// NewSQLiteAuditStore opens (creating if needed) the database at path and
// applies the schema.
func NewSQLiteAuditStore(path string) (*SQLiteAuditStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// A single writer keeps inserts serialized; SQLite handles the locking.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &SQLiteAuditStore{db: db}, nil
}

// Append inserts one sanitized event.
func (s *SQLiteAuditStore) Append(ctx context.Context, event audit.Event) error {
	meta := event.Metadata
	if meta == nil {
		meta = &audit.Metadata{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			timestamp, event_type, actor_id, actor_role, capability, result,
			reason, from_type, from_id, to_type, to_id, execution_time_ms, error_code
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		string(event.EventType),
		event.ActorID,
		event.ActorRole,
		event.Capability,
		string(event.Result),
		event.Reason,
		meta.FromType,
		meta.FromID,
		meta.ToType,
		meta.ToID,
		meta.ExecutionTimeMS,
		meta.ErrorCode,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Query returns events matching q in chronological order.
func (s *SQLiteAuditStore) Query(ctx context.Context, q outbound.AuditQuery) ([]audit.Event, error) {
	var (
		conds []string
		args  []any
	)
	if !q.Start.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, q.Start.UTC().Format(time.RFC3339Nano))
	}
	if !q.End.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, q.End.UTC().Format(time.RFC3339Nano))
	}
	if q.ActorID != "" {
		conds = append(conds, "actor_id = ?")
		args = append(args, q.ActorID)
	}
	if q.Capability != "" {
		conds = append(conds, "capability = ?")
		args = append(args, q.Capability)
	}
	if q.EventType != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, q.EventType)
	}
	if q.Result != "" {
		conds = append(conds, "result = ?")
		args = append(args, q.Result)
	}

	query := "SELECT timestamp, event_type, actor_id, actor_role, capability, result, reason, from_type, from_id, to_type, to_id, execution_time_ms, error_code FROM audit_events"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC LIMIT ?"

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			ev audit.Event
			ts string
			md audit.Metadata
		)
		if err := rows.Scan(&ts, &ev.EventType, &ev.ActorID, &ev.ActorRole, &ev.Capability,
			&ev.Result, &ev.Reason, &md.FromType, &md.FromID, &md.ToType, &md.ToID,
			&md.ExecutionTimeMS, &md.ErrorCode); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		if md != (audit.Metadata{}) {
			ev.Metadata = &md
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the database.
func (s *SQLiteAuditStore) Close() error {
	return s.db.Close()
}

var (
	_ outbound.AuditSink       = (*SQLiteAuditStore)(nil)
	_ outbound.AuditQueryStore = (*SQLiteAuditStore)(nil)
)
