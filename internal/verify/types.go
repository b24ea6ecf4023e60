// internal/verify/types.go
package verify

// ReferenceEntry is the ground truth a candidate answer is verified against.
// Meaning must be non-empty when verification is invoked; callers filter
// entries without a meaning before building a run.
type ReferenceEntry struct {
	Headword     string `json:"headword"`
	Meaning      string `json:"meaning"`
	NativeScript string `json:"native_script,omitempty"`
}

// Result records the scoring of one candidate answer against one reference
// entry. Inputs are echoed for reporting.
type Result struct {
	Headword      string   `json:"headword"`
	Meaning       string   `json:"meaning"`
	CandidateText string   `json:"candidate_text"`
	MatchedTokens []string `json:"matched_tokens"`
	MatchPercent  int      `json:"match_percentage"`
	IsAccurate    bool     `json:"is_accurate"`
	ScriptMatch   bool     `json:"script_match"`
	WordMatch     bool     `json:"word_match"`
	Passed        bool     `json:"passed"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Summary aggregates a verification run.
type Summary struct {
	TotalTests int    `json:"total_tests"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	PassRate   string `json:"pass_rate"`
}

// Report is the JSON document written at the end of a run.
type Report struct {
	GeneratedAt string   `json:"generated_at"`
	Summary     Summary  `json:"summary"`
	Results     []Result `json:"results"`
}
