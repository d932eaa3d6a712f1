// SPDX-License-Identifier: MIT

// Package archive persists terminal session records to a local sqlite
// database. The in-memory registry never evicts records; the archive exists
// so operators can rotate the process without losing session history.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arms-tools/seatwatch/internal/metrics"
	"github.com/arms-tools/seatwatch/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL,
	course_code TEXT NOT NULL,
	slot        TEXT NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL,
	attempts    INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	last_check  TIMESTAMP,
	finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_finished_at ON sessions (finished_at);
`

// Record is one archived terminal session.
type Record struct {
	ID         string     `json:"session_id"`
	Username   string     `json:"username"`
	CourseCode string     `json:"course_code"`
	Slot       string     `json:"slot"`
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	Attempts   int        `json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
	LastCheck  *time.Time `json:"last_check,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
}

// Store wraps the sqlite database holding archived sessions.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the archive database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	// sqlite tolerates a single writer; the archive is written from many
	// monitor goroutines, so serialize through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Record inserts the terminal snapshot of a session. Inserting the same
// session twice is an error; monitors only terminate once.
func (s *Store) Record(ctx context.Context, sess session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
			(id, username, course_code, slot, status, message, attempts, created_at, last_check, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Config.Username,
		sess.Config.CourseCode,
		sess.Config.Slot,
		string(sess.Status),
		sess.Message,
		sess.Attempts,
		sess.CreatedAt,
		sess.LastCheck,
		s.now(),
	)
	if err != nil {
		metrics.IncArchiveWrite("failure")
		return fmt.Errorf("archive session %s: %w", sess.ID, err)
	}
	metrics.IncArchiveWrite("success")
	return nil
}

// List returns up to limit archived sessions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, course_code, slot, status, message, attempts, created_at, last_check, finished_at
		FROM sessions
		ORDER BY finished_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.Username, &r.CourseCode, &r.Slot, &r.Status, &r.Message,
			&r.Attempts, &r.CreatedAt, &r.LastCheck, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
