// Package store keeps the history of saved words in SQLite.
//
// Every saved word is also appended to a log file by the wordlog package;
// the history adds lookup, deletion and per-letter counts on top of that.
// Save times are kept as unix nanoseconds so the newest-first order holds
// across zone and daylight saving changes.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas are applied to the connection before any migration runs.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Store is the word history database.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the history at dbPath, creating it if needed, and brings its
// schema up to date.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", dbPath, err)
	}

	// Pragmas are per connection. With a single connection they stay set.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("history %s: %w", p, err)
		}
	}
	if err := s.migrate(); err != nil {
		return fmt.Errorf("migrate history %s: %w", s.path, err)
	}
	return nil
}

// Version returns the schema version recorded in the database.
func (s *Store) Version() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
