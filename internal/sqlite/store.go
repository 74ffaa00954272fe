// Package sqlite implements the SQLite persistence layer for Walkabout:
// the shared connection lifecycle, the three entity repositories, and the
// physical backup manager.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tourforge/walkabout/pkg/types"
)

// timeLayout is the storage format for all timestamps: fixed-width UTC
// with millisecond precision, so lexicographic ORDER BY on the column
// equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Store owns the single shared database handle. Repositories and the
// backup manager resolve the live handle through Handle on every call
// and never cache it, so a restore-time rebind is picked up immediately.
type Store struct {
	mu     sync.RWMutex
	config types.Config
	db     *sql.DB
}

// NewStore creates an unopened Store; call Open with a Config to
// initialize it.
func NewStore() *Store {
	return &Store{}
}

// Open opens the database file, enables per-connection foreign-key
// enforcement, and creates tables and indexes idempotently. The parent
// directory of the database file is created if missing. Returns
// ErrAlreadyOpen if the store already holds a live handle.
//
// Initialization failure is fatal and propagates to the caller.
func (s *Store) Open(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return types.ErrAlreadyOpen
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if dir := filepath.Dir(config.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}

	db, err := openDB(config.DBPath)
	if err != nil {
		return err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.config = config
	return nil
}

// Handle returns the live database handle. Returns ErrNotInitialized if
// the store has not been opened or has been closed.
func (s *Store) Handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrNotInitialized
	}
	return s.db, nil
}

// Config returns the Config the store was opened with.
func (s *Store) Config() types.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Reset drops and recreates all tables, leaving an empty schema.
// Destructive; intended for tests and operational resets only.
func (s *Store) Reset() error {
	db, err := s.Handle()
	if err != nil {
		return err
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("dropping table: %w", err)
		}
	}
	return initSchema(db)
}

// Close releases the database handle. Idempotent. Subsequent repository
// calls fail with ErrNotInitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// openDB opens a SQLite handle with the store's connection settings:
// foreign keys on and a 5000ms busy timeout, applied through the DSN so
// they hold for every connection including one reopened after a restore.
// The pool is capped at one connection; SQLite is single-writer and the
// schema pragmas are per-connection.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// dsn builds the connection string for the given database file.
func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// initSchema runs every DDL statement. Safe to call repeatedly.
func initSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}

// wrapConstraint converts engine constraint failures (foreign-key or
// uniqueness violations) into types.ErrConstraint so callers can test
// with errors.Is. Other errors pass through unchanged.
func wrapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%w: %v", types.ErrConstraint, err)
	}
	return err
}

// formatTime renders a timestamp in the canonical storage format.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
