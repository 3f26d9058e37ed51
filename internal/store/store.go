package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	kvTable      = "kv_entries"
	attemptTable = "quiz_attempts"
)

// Store holds the SQLite connection and provides access to repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// KVRepo returns a key/value repository backed by this store. It
// satisfies progress.Backend.
func (s *Store) KVRepo() *KVRepo {
	return &KVRepo{db: s.db}
}

// AttemptRepo returns the quiz attempt log backed by this store.
func (s *Store) AttemptRepo() AttemptRepo {
	return &attemptRepo{db: s.db, seq: s.seq}
}

// builder returns an ent SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// schemaDDL creates the kv and attempt tables. Column order matches the
// field order of the ent schemas in ent/schema.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
		entry_key  TEXT NOT NULL PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		sequence     INTEGER NOT NULL PRIMARY KEY,
		attempt_id   TEXT NOT NULL,
		quiz_key     TEXT NOT NULL,
		quiz_title   TEXT NOT NULL DEFAULT '',
		user_id      TEXT NOT NULL DEFAULT '',
		score        INTEGER NOT NULL,
		percentage   INTEGER NOT NULL,
		passed       BOOLEAN NOT NULL,
		mode         TEXT NOT NULL,
		submitted_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_attempts_quiz_key ON quiz_attempts (quiz_key)`,
}

// migrate creates the kv and attempt tables if they don't exist.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
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

// DefaultDBPath resolves the database file path in priority order:
// 1. EDULEARN_DB environment variable
// 2. $XDG_DATA_HOME/edulearn/edulearn.db
// 3. ~/.local/share/edulearn/edulearn.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EDULEARN_DB"); p != "" {
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

	p := filepath.Join(dataHome, "edulearn", "edulearn.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
