// Package activity keeps an append-only SQLite journal of project changes.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS activity (
	id         TEXT PRIMARY KEY,
	at         DATETIME NOT NULL,
	kind       TEXT NOT NULL,
	project_id TEXT NOT NULL DEFAULT '',
	task_id    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_activity_at ON activity(at);
CREATE INDEX IF NOT EXISTS idx_activity_project ON activity(project_id);
`

// Limits for Recent.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Entry is one journal row.
type Entry struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Kind      string    `json:"kind"`
	ProjectID string    `json:"project_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Journal wraps a sql.DB holding the activity table.
type Journal struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Journal, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("activity: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("activity: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("activity: apply schema: %w", err)
	}
	return &Journal{conn: conn}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

// Record appends e, filling in ID and At when they are zero.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := j.conn.ExecContext(ctx, `
		INSERT INTO activity (id, at, kind, project_id, task_id, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.At.UTC(), e.Kind, e.ProjectID, e.TaskID, e.Detail)
	if err != nil {
		return fmt.Errorf("activity: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. projectID narrows the
// result to one project when non-empty.
func (j *Journal) Recent(ctx context.Context, projectID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	query := `SELECT id, at, kind, project_id, task_id, detail FROM activity`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("activity: recent: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.At, &e.Kind, &e.ProjectID, &e.TaskID, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
