// Package audit keeps an append-only trail of review activity:
// batch runs, fallback resolutions, duplicate persistence skips, and
// feedback changes.
//
// The trail lives in its own SQLite database on the pure-Go driver
// (modernc.org/sqlite) so audit recording works in cgo-free builds and
// its write load never contends with the result store.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// EntryKind enumerates auditable actions.
type EntryKind string

const (
	KindBatchStarted   EntryKind = "batch_started"
	KindBatchCompleted EntryKind = "batch_completed"
	KindBatchRejected  EntryKind = "batch_rejected"
	KindFallback       EntryKind = "fallback_applied"
	KindDuplicateSkip  EntryKind = "duplicate_skip"
	KindFeedback       EntryKind = "feedback_changed"
	KindSessionDeleted EntryKind = "session_deleted"
)

// Entry is one audit record.
type Entry struct {
	ID        int64          `json:"id"`
	Kind      EntryKind      `json:"kind"`
	SessionID string         `json:"sessionId"`
	RuleID    int64          `json:"ruleId,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Trail is the append-only audit store.
type Trail struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	rule_id INTEGER NOT NULL DEFAULT 0,
	detail TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_entries (session_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_entries (created_at);
`

// Open opens (or creates) the audit database at path.
func Open(path string, logger *slog.Logger) (*Trail, error) {
	if path == "" {
		return nil, fmt.Errorf("audit db path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}

	return &Trail{
		db:     db,
		logger: logger.With("component", "audit"),
	}, nil
}

// Record appends one entry. Audit failures are logged, not
// propagated: the trail must never break the review path.
func (t *Trail) Record(ctx context.Context, entry Entry) {
	if t == nil {
		return
	}
	detail := "{}"
	if entry.Detail != nil {
		data, err := json.Marshal(entry.Detail)
		if err != nil {
			t.logger.Warn("audit detail not serializable", "kind", entry.Kind, "error", err)
		} else {
			detail = string(data)
		}
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := t.db.ExecContext(ctx,
		"INSERT INTO audit_entries (kind, session_id, rule_id, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		string(entry.Kind), entry.SessionID, entry.RuleID, detail, createdAt.Unix())
	if err != nil {
		t.logger.Warn("audit record failed", "kind", entry.Kind, "error", err)
	}
}

// BySession returns a session's audit entries, oldest first.
func (t *Trail) BySession(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := t.db.QueryContext(ctx,
		"SELECT id, kind, session_id, rule_id, detail, created_at FROM audit_entries WHERE session_id = ? ORDER BY id ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			kind    string
			detail  string
			created int64
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.SessionID, &entry.RuleID, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Kind = EntryKind(kind)
		entry.CreatedAt = time.Unix(created, 0).UTC()
		if err := json.Unmarshal([]byte(detail), &entry.Detail); err != nil {
			entry.Detail = map[string]any{"raw": detail}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the total number of audit entries.
func (t *Trail) Count(ctx context.Context) (int64, error) {
	var count int64
	err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_entries").Scan(&count)
	return count, err
}

// Close closes the audit database.
func (t *Trail) Close() error {
	if t == nil {
		return nil
	}
	return t.db.Close()
}
