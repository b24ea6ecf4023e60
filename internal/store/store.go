// internal/store/store.go
// Package store persists dictionary entries in sqlite.
package store

import "errors"

// ErrNotFound is returned when a lookup matches no entry.
var ErrNotFound = errors.New("entry not found")

// Entry is one dictionary row. NativeScript carries the headword in its
// original writing system; Meaning is a free-text English gloss, possibly
// holding multiple comma-separated senses.
type Entry struct {
	ID           int64  `json:"id"`
	Headword     string `json:"headword"`
	NativeScript string `json:"native_script,omitempty"`
	Phonetic     string `json:"phonetic,omitempty"`
	Meaning      string `json:"meaning"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
	Example      string `json:"example,omitempty"`
}
