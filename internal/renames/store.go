// Package renames persists user-supplied display-name overrides, keyed by
// conversation and turn, plus the process-wide panel collapsed flag.
package renames

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS renames (
	conversation_id TEXT NOT NULL,
	turn_id         TEXT NOT NULL,
	name            TEXT NOT NULL,
	PRIMARY KEY (conversation_id, turn_id)
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open rename db %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init rename db %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns all overrides for one conversation scope.
func (s *Store) Load(ctx context.Context, conversationID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT turn_id, name
		FROM renames
		WHERE conversation_id = ?
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query renames for %q: %w", conversationID, err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var turnID, name string
		if err := rows.Scan(&turnID, &name); err != nil {
			return nil, fmt.Errorf("scan rename row: %w", err)
		}
		names[turnID] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rename rows: %w", err)
	}
	return names, nil
}

// Save stores a trimmed override. An empty or whitespace-only name deletes
// the override instead of storing an empty string.
func (s *Store) Save(ctx context.Context, conversationID, turnID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM renames
			WHERE conversation_id = ? AND turn_id = ?
		`, conversationID, turnID); err != nil {
			return fmt.Errorf("delete rename %q/%q: %w", conversationID, turnID, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO renames (conversation_id, turn_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT (conversation_id, turn_id) DO UPDATE SET name = excluded.name
	`, conversationID, turnID, name); err != nil {
		return fmt.Errorf("save rename %q/%q: %w", conversationID, turnID, err)
	}
	return nil
}

const collapsedKey = "panel_collapsed"

// Collapsed reads the panel collapsed flag. The flag is process-wide, not
// scoped per conversation. Missing rows read as false.
func (s *Store) Collapsed(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, collapsedKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read collapsed flag: %w", err)
	}
	return value == "1", nil
}

func (s *Store) SetCollapsed(ctx context.Context, collapsed bool) error {
	value := "0"
	if collapsed {
		value = "1"
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, collapsedKey, value); err != nil {
		return fmt.Errorf("save collapsed flag: %w", err)
	}
	return nil
}
