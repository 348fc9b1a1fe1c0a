package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Word is a saved word stored in the database.
type Word struct {
	ID      string
	Text    string
	Length  int
	LogPath string
	SavedAt time.Time
}

// LetterCount is how often a letter appears across saved words.
type LetterCount struct {
	Letter string
	Count  int
}

// WordRepository provides CRUD operations for saved words.
type WordRepository struct {
	db *sql.DB
}

// Words returns the word repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

// Create inserts a word and its letters in a single transaction.
// SavedAt is set to now when zero.
func (r *WordRepository) Create(w *Word) error {
	if w.SavedAt.IsZero() {
		w.SavedAt = time.Now()
	}
	w.Length = len(w.Text)

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO words (id, text, length, log_path, saved_at) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.Text, w.Length, w.LogPath, w.SavedAt.UnixNano(),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO word_letters (word_id, position, letter) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < len(w.Text); i++ {
		if _, err := stmt.Exec(w.ID, i, w.Text[i:i+1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a word by its ID.
func (r *WordRepository) GetByID(id string) (*Word, error) {
	w, err := scanWord(r.db.QueryRow(
		`SELECT id, text, length, log_path, saved_at FROM words WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return w, nil
}

// List retrieves saved words, newest first by save instant. A limit of zero or less
// returns every word.
func (r *WordRepository) List(limit int) ([]*Word, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, text, length, log_path, saved_at
		 FROM words ORDER BY saved_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []*Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanWord(row scanner) (*Word, error) {
	w := &Word{}
	var savedAt int64
	if err := row.Scan(&w.ID, &w.Text, &w.Length, &w.LogPath, &savedAt); err != nil {
		return nil, err
	}
	w.SavedAt = time.Unix(0, savedAt)
	return w, nil
}

// Delete removes a word and its letters by ID.
func (r *WordRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// LetterCounts returns how many times each letter was saved, by letter.
func (r *WordRepository) LetterCounts() ([]LetterCount, error) {
	rows, err := r.db.Query(
		`SELECT letter, COUNT(*) FROM word_letters GROUP BY letter ORDER BY letter`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []LetterCount
	for rows.Next() {
		var c LetterCount
		if err := rows.Scan(&c.Letter, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
