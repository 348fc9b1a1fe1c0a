package store

import "fmt"

// migrations[i] moves the schema from user_version i to i+1. Append only.
var migrations = [][]string{
	// 1: saved words and their letters. saved_at is unix nanoseconds.
	{
		`CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			length INTEGER NOT NULL,
			log_path TEXT NOT NULL DEFAULT '',
			saved_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS word_letters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			word_id TEXT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			letter TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_words_saved_at ON words(saved_at)`,
		`CREATE INDEX IF NOT EXISTS idx_word_letters_word_id ON word_letters(word_id)`,
	},

	// 2: letter counts for /api/letters
	{
		`CREATE INDEX IF NOT EXISTS idx_word_letters_letter ON word_letters(letter)`,
	},
}

// SchemaVersion is the schema version this build writes.
var SchemaVersion = len(migrations)

// migrate applies the migrations the database has not seen yet, each in
// its own transaction together with the version bump.
func (s *Store) migrate() error {
	version, err := s.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		if err := s.apply(v+1, migrations[v]); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, stmts []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}
