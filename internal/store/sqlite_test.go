// internal/store/sqlite_test.go
package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *SQLiteStore) {
	t.Helper()
	entries := []Entry{
		{Headword: "ghar", NativeScript: "घर", Meaning: "house, home", PartOfSpeech: "noun"},
		{Headword: "pani", NativeScript: "पानी", Meaning: "water", PartOfSpeech: "noun"},
		{Headword: "kitab", NativeScript: "किताब", Meaning: "book", PartOfSpeech: "noun"},
		{Headword: "chalna", Meaning: "to walk, to move", PartOfSpeech: "verb"},
		{Headword: "stub", Meaning: "   "},
	}
	for _, e := range entries {
		if _, err := s.Insert(e); err != nil {
			t.Fatalf("Insert(%q) returned error: %v", e.Headword, err)
		}
	}
}

// TestSearch covers querying by headword, meaning substring, native script,
// and pagination totals.
func TestSearch(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seed(t, s)

	entries, total, err := s.Search("ghar", 20, 0)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].Headword != "ghar" {
		t.Fatalf("unexpected headword search result: total=%d entries=%+v", total, entries)
	}

	// Meaning substring.
	entries, total, err = s.Search("walk", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || entries[0].Headword != "chalna" {
		t.Fatalf("unexpected meaning search result: %+v", entries)
	}

	// Native script.
	entries, total, err = s.Search("पानी", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || entries[0].Headword != "pani" {
		t.Fatalf("unexpected script search result: %+v", entries)
	}

	// Empty query pages the whole table.
	entries, total, err = s.Search("", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(entries) != 2 {
		t.Fatalf("expected total 5 with page of 2, got total=%d page=%d", total, len(entries))
	}

	// Offset past the end yields an empty page but the same total.
	entries, total, err = s.Search("", 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(entries) != 0 {
		t.Fatalf("expected empty page with total 5, got total=%d page=%d", total, len(entries))
	}
}

func TestGetByHeadword(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seed(t, s)

	entry, err := s.GetByHeadword("GHAR")
	if err != nil {
		t.Fatalf("GetByHeadword returned error: %v", err)
	}
	if entry.Headword != "ghar" || entry.NativeScript != "घर" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := s.GetByHeadword("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestWithMeanings verifies blank-meaning rows are excluded and the cap applies.
func TestWithMeanings(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seed(t, s)

	entries, err := s.WithMeanings(0)
	if err != nil {
		t.Fatalf("WithMeanings returned error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries with meanings, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Headword == "stub" {
			t.Fatal("blank-meaning entry should be excluded")
		}
	}

	entries, err = s.WithMeanings(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected capped result of 2, got %d", len(entries))
	}
}

// TestImportJSON verifies bulk loading skips incomplete records.
func TestImportJSON(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	path := filepath.Join(t.TempDir(), "seed.json")
	data := `[
        {"headword": "ghar", "native_script": "घर", "meaning": "house, home"},
        {"headword": "", "meaning": "orphan"},
        {"headword": "pani", "meaning": "water"}
    ]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	imported, err := s.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON returned error: %v", err)
	}
	if imported != 2 {
		t.Fatalf("expected 2 imported, got %d", imported)
	}

	_, total, err := s.Search("", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("expected 2 rows after import, got %d", total)
	}
}
