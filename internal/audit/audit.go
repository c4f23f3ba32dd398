// Package audit keeps a local history of inventory operations so the
// operator can answer "what happened to REF001" without re-reading the
// ledger and remote sheet. SQLite with WAL mode; writes are idempotent
// on event ID.
//
// Audit recording is advisory: callers log a failed Record call and move
// on, they never abort the main flow over it.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Kind categorizes an audit event.
type Kind string

const (
	KindAppended Kind = "appended" // row accepted into the ledger
	KindRejected Kind = "rejected" // duplicate identity refused
	KindArchived Kind = "archived" // asset bundle written locally
	KindMerged   Kind = "merged"   // rows merged to the remote sheet
	KindUploaded Kind = "uploaded" // asset bundle mirrored to the remote store
	KindFailed   Kind = "failed"   // extraction failure tagged into the ledger
)

// Event is one recorded operation.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	SKU       string    `json:"sku,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides durable storage for audit events.
type Store struct {
	db *sql.DB
}

// Open creates or opens the audit database at path. WAL mode, a busy
// timeout for lock contention, and the schema are applied automatically;
// calling Open twice on the same path is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect audit database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY from our own pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one event. A zero ID gets a fresh UUID and a zero
// CreatedAt gets the current time. Duplicate IDs are silently ignored
// (ON CONFLICT DO NOTHING), so replaying an event is idempotent.
func (s *Store) Record(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, kind, sku, reference, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, ev.ID, string(ev.Kind), ev.SKU, ev.Reference, ev.Detail, ev.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// Recent returns the newest events, most recent first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, sku, reference, detail, created_at
		FROM events
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var kind, createdAt string
		if err := rows.Scan(&ev.ID, &kind, &ev.SKU, &ev.Reference, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Kind = Kind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.CreatedAt = ts
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
