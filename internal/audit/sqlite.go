package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore records audit events into a SQLite database. It is an
// alternative to the flat file for users who want to query the trail.
// Rows are only ever inserted.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the audit database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("audit: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			ts            TEXT    NOT NULL,
			type          TEXT    NOT NULL,
			user          TEXT    NOT NULL DEFAULT '',
			role          TEXT    NOT NULL DEFAULT '',
			session       TEXT    NOT NULL DEFAULT '',
			operation     TEXT    NOT NULL DEFAULT '',
			permission    TEXT    NOT NULL DEFAULT '',
			required_role TEXT    NOT NULL DEFAULT '',
			reason        TEXT    NOT NULL DEFAULT '',
			cmd           TEXT    NOT NULL DEFAULT '',
			exit_code     INTEGER NOT NULL DEFAULT 0,
			duration_ns   INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(type)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_user ON audit_events(user)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record inserts an event.
func (s *SQLiteStore) Record(e *Event) error {
	_, err := s.db.Exec(`INSERT INTO audit_events
		(ts, type, user, role, session, operation, permission, required_role, reason, cmd, exit_code, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UTC().Format(time.RFC3339Nano), string(e.Type), e.User, e.Role, e.Session,
		e.Operation, e.Permission, e.RequiredRole, e.Reason, e.Cmd, e.ExitCode, int64(e.Duration))
	if err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// Query returns events matching f, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.User != "" {
		where = append(where, "user = ?")
		args = append(args, f.User)
	}

	query := `SELECT ts, type, user, role, session, operation, permission, required_role, reason, cmd, exit_code, duration_ns
		FROM audit_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var (
			e        Event
			ts, typ  string
			duration int64
		)
		if err := rows.Scan(&ts, &typ, &e.User, &e.Role, &e.Session, &e.Operation,
			&e.Permission, &e.RequiredRole, &e.Reason, &e.Cmd, &e.ExitCode, &duration); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("audit: bad timestamp %q: %w", ts, err)
		}
		e.Type = EventType(typ)
		e.Duration = time.Duration(duration)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}

	// Rows were fetched newest first so LIMIT keeps the most recent ones.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
