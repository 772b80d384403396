package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store keeps audit events in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates if needed) the audit database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite does not like concurrent writers on one file.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		kind TEXT NOT NULL,
		success INTEGER NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		request_id TEXT,
		token_id TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_created ON tool_calls(created_at);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts an event, assigning an ID and timestamp when missing.
func (s *Store) Record(event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO tool_calls (id, tool, kind, success, error, duration_ms, request_id, token_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Tool, string(event.Kind), event.Success, nullString(event.Error),
		event.DurationMs, nullString(event.RequestID), nullString(event.TokenID), event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. Tool filters by name when
// non-empty.
func (s *Store) Recent(tool string, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, tool, kind, success, error, duration_ms, request_id, token_id, created_at FROM tool_calls`
	args := []any{}
	if tool != "" {
		query += ` WHERE tool = ?`
		args = append(args, tool)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*Event
	for rows.Next() {
		var (
			e                      Event
			kind                   string
			errMsg, reqID, tokenID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Tool, &kind, &e.Success, &errMsg, &e.DurationMs, &reqID, &tokenID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Kind = Kind(kind)
		e.Error = errMsg.String
		e.RequestID = reqID.String
		e.TokenID = tokenID.String
		events = append(events, &e)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
