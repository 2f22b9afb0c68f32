package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotSet is returned by Get when no display preference has been stored.
var ErrNotSet = errors.New("display preference not set")

// ErrInvalidTheme is returned by Set for themes other than light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

const schema = `
CREATE TABLE IF NOT EXISTS display_preference (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    theme      TEXT NOT NULL CHECK (theme IN ('light', 'dark')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
`

// Store persists the operator's display theme preference in SQLite. A single
// row holds the override; its absence means "follow the configured default".
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the preference database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open preference db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init preference schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored theme override, or ErrNotSet when none exists.
func (s *Store) Get(ctx context.Context) (string, error) {
	var theme string
	err := s.db.QueryRowContext(ctx, `SELECT theme FROM display_preference WHERE id = 1`).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotSet
	}
	if err != nil {
		return "", fmt.Errorf("get display preference: %w", err)
	}
	return theme, nil
}

// Set stores the theme override, replacing any previous value.
func (s *Store) Set(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO display_preference (id, theme, updated_at)
VALUES (1, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
ON CONFLICT (id) DO UPDATE SET
    theme = excluded.theme,
    updated_at = excluded.updated_at
`, theme)
	if err != nil {
		return fmt.Errorf("set display preference: %w", err)
	}
	return nil
}

// Clear removes the theme override so the configured default applies again.
// Clearing an already absent preference is not an error.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM display_preference WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("clear display preference: %w", err)
	}
	return nil
}
