// internal/store/sqlite.go
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    headword TEXT NOT NULL,
    native_script TEXT NOT NULL DEFAULT '',
    phonetic TEXT NOT NULL DEFAULT '',
    meaning TEXT NOT NULL,
    part_of_speech TEXT NOT NULL DEFAULT '',
    example TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_headword ON entries(headword);
`

// SQLiteStore is the sqlite-backed dictionary.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and if necessary creates) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const entryColumns = "id, headword, native_script, phonetic, meaning, part_of_speech, example"

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Headword, &e.NativeScript, &e.Phonetic, &e.Meaning, &e.PartOfSpeech, &e.Example)
	return e, err
}

// Search returns a page of entries matching query against headword, meaning,
// or native script, plus the total match count for pagination. An empty query
// pages through the whole table.
func (s *SQLiteStore) Search(query string, limit, offset int) ([]Entry, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		where = "WHERE headword LIKE ? OR meaning LIKE ? OR native_script LIKE ?"
		pattern := "%" + q + "%"
		args = []any{pattern, pattern, pattern}
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting entries: %w", err)
	}

	rows, err := s.db.Query(
		fmt.Sprintf("SELECT %s FROM entries %s ORDER BY headword, id LIMIT ? OFFSET ?", entryColumns, where),
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// GetByHeadword returns the first entry with the given headword
// (case-insensitive), or ErrNotFound.
func (s *SQLiteStore) GetByHeadword(headword string) (*Entry, error) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM entries WHERE headword = ? COLLATE NOCASE ORDER BY id LIMIT 1", entryColumns),
		headword,
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Insert stores a new entry and returns its assigned ID.
func (s *SQLiteStore) Insert(e Entry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO entries (headword, native_script, phonetic, meaning, part_of_speech, example) VALUES (?, ?, ?, ?, ?, ?)",
		e.Headword, e.NativeScript, e.Phonetic, e.Meaning, e.PartOfSpeech, e.Example,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// WithMeanings returns up to limit entries that carry a non-empty meaning,
// suitable as verification references. limit <= 0 means no cap.
func (s *SQLiteStore) WithMeanings(limit int) ([]Entry, error) {
	q := fmt.Sprintf("SELECT %s FROM entries WHERE TRIM(meaning) != '' ORDER BY id", entryColumns)
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ImportJSON loads entries from a JSON array file into the table, skipping
// records without a headword or meaning. It returns the number imported.
func (s *SQLiteStore) ImportJSON(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("error reading import file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("error parsing import file: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO entries (headword, native_script, phonetic, meaning, part_of_speech, example) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	imported := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Headword) == "" || strings.TrimSpace(e.Meaning) == "" {
			continue
		}
		if _, err := stmt.Exec(e.Headword, e.NativeScript, e.Phonetic, e.Meaning, e.PartOfSpeech, e.Example); err != nil {
			return 0, err
		}
		imported++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
