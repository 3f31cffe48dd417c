package store

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

const sqliteFileName = "lefocus.sqlite"

// Store is the on-disk session database rooted at Dir. Every operation opens
// its own connection so the CLI and TUI can share the directory.
type Store struct {
	Dir string
}

// DefaultDir returns the data directory: ~/.lefocus/data.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("store: empty dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection; a single connection keeps them in effect.
	db.SetMaxOpenConns(1)
	// WAL lets the TUI read while the timer writes progress.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS labels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			order_index INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			deleted_at_unixms INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at_unixms INTEGER NOT NULL,
			stopped_at_unixms INTEGER,
			status TEXT NOT NULL,
			target_ms INTEGER NOT NULL,
			active_ms INTEGER NOT NULL DEFAULT 0,
			label_id INTEGER REFERENCES labels(id) ON DELETE SET NULL,
			note TEXT,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at_unixms DESC);`,
		`CREATE TABLE IF NOT EXISTS segments (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			start_unixms INTEGER NOT NULL,
			end_unixms INTEGER NOT NULL,
			duration_secs INTEGER NOT NULL,
			bundle_id TEXT NOT NULL,
			app_name TEXT,
			window_title TEXT,
			confidence REAL NOT NULL DEFAULT 0,
			summary TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_segments_session ON segments(session_id, start_unixms);`,
	},
	{
		`CREATE TABLE IF NOT EXISTS app_selections (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			bundle_id TEXT NOT NULL,
			selected INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(session_id, bundle_id)
		);`,
	},
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	for i := version; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range migrations[i] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", i+1, err)
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func toUnixMs(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromUnixMs(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullableTime(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromUnixMs(ms.Int64)
	return &t
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
