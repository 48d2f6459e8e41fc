package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding all progress slots.
type DB struct {
	db *sql.DB
}

// Open creates a DB connected to the SQLite database at dsn. It
// applies recommended pragmas and creates the schema.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &DB{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Slot returns the Store bound to the named slot.
func (d *DB) Slot(key string) Store {
	return &sqliteStore{db: d.db, slot: key, now: time.Now}
}

// applyPragmas configures SQLite for single-user client use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS progress_slots (
	slot       TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	data       TEXT NOT NULL,
	saved_at   TIMESTAMP NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create progress_slots: %w", err)
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PROCTOR_DB environment variable
// 2. $XDG_DATA_HOME/proctor/proctor.db
// 3. ~/.local/share/proctor/proctor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PROCTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "proctor", "proctor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// sqliteStore implements Store over one row of progress_slots.
type sqliteStore struct {
	db   *sql.DB
	slot string
	now  func() time.Time
}

func (s *sqliteStore) Save(ctx context.Context, snap *Snapshot) error {
	snap.SchemaVersion = SchemaVersion
	snap.SavedAt = s.now()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO progress_slots (slot, session_id, data, saved_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
	session_id = excluded.session_id,
	data       = excluded.data,
	saved_at   = excluded.saved_at`,
		s.slot, snap.SessionID, string(data), snap.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context, expectedSessionID string) (*Snapshot, error) {
	var (
		sessionID string
		data      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, data FROM progress_slots WHERE slot = ?`, s.slot).
		Scan(&sessionID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		// Corrupt slot: clear it rather than wedging every load.
		_ = s.Clear(ctx)
		return nil, nil
	}

	if snap.SchemaVersion != SchemaVersion || snap.Expired(s.now()) {
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if expectedSessionID != "" && snap.SessionID != expectedSessionID {
		return nil, nil
	}
	return &snap, nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM progress_slots WHERE slot = ?`, s.slot)
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (s *sqliteStore) Exists(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM progress_slots WHERE slot = ?`, s.slot).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probe snapshot: %w", err)
	}
	return n > 0, nil
}
