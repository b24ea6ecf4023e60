// internal/verify/verify.go
// Package verify scores free-text LLM answers against dictionary entries
// using word and phrase overlap.
package verify

import (
	"math"
	"strings"
)

const (
	// AccuracyThreshold is the minimum match percentage for an answer to
	// count as accurate. A stricter 50% policy existed historically; this
	// deployment uses 40% everywhere.
	AccuracyThreshold = 40

	// minSignificantLen is the exclusive lower bound on token length.
	// Tokens of one or two characters ("is", "to") never count toward the
	// match denominator.
	minSignificantLen = 2
)

// Score compares a candidate answer against a reference entry and returns the
// overlap result. It is a pure function: no I/O, no shared state, identical
// inputs always yield identical results.
//
// The meaning is split on commas into sense phrases. A whole-phrase substring
// match counts every significant word of that phrase; otherwise each
// significant word is tested individually. The denominator sums significant
// word counts across phrases without cross-phrase deduplication, while the
// reported matched set is deduplicated.
func Score(entry ReferenceEntry, candidate string) Result {
	lowerCandidate := strings.ToLower(candidate)
	lowerMeaning := strings.ToLower(entry.Meaning)

	var totalWords, matchedWords int
	seen := make(map[string]struct{})
	var matchedTokens []string

	record := func(word string) {
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		matchedTokens = append(matchedTokens, word)
	}

	for _, phrase := range strings.Split(lowerMeaning, ",") {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		words := significantWords(phrase)
		totalWords += len(words)

		// A whole-phrase hit short-circuits per-word checks for this phrase.
		if strings.Contains(lowerCandidate, phrase) {
			matchedWords += len(words)
			for _, w := range words {
				record(w)
			}
			continue
		}
		for _, w := range words {
			if strings.Contains(lowerCandidate, w) {
				matchedWords++
				record(w)
			}
		}
	}

	percent := 0
	if totalWords > 0 {
		percent = int(math.Round(float64(matchedWords) / float64(totalWords) * 100))
	}

	return Result{
		Headword:      entry.Headword,
		Meaning:       entry.Meaning,
		CandidateText: candidate,
		MatchedTokens: matchedTokens,
		MatchPercent:  percent,
		IsAccurate:    percent >= AccuracyThreshold,
		ScriptMatch:   entry.NativeScript != "" && strings.Contains(candidate, entry.NativeScript),
		WordMatch:     entry.Headword != "" && strings.Contains(lowerCandidate, strings.ToLower(entry.Headword)),
	}
}

// significantWords returns the whitespace-separated tokens of a phrase longer
// than two characters. Substring checks are literal; punctuation is not
// stripped beyond the caller's comma splitting.
func significantWords(phrase string) []string {
	fields := strings.Fields(phrase)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > minSignificantLen {
			words = append(words, f)
		}
	}
	return words
}
