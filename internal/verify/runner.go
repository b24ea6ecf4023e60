// internal/verify/runner.go
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/koshalabs/kosha/internal/logging"
	"github.com/koshalabs/kosha/internal/providers"
)

// defaultSystemPrompt frames the provider call so answers stay short enough
// for overlap scoring to be meaningful.
const defaultSystemPrompt = "You are a concise dictionary assistant. Answer in one or two short sentences."

var (
	passLabel = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed).SprintFunc()
)

// Runner drives a batch of reference entries through one provider
// sequentially. Calls are spaced by Delay to respect vendor rate limits;
// verification itself is pure and would be safe to parallelize.
type Runner struct {
	Provider     providers.ChatProvider
	Delay        time.Duration
	MaxTests     int
	SystemPrompt string
	Out          io.Writer
}

// Run executes the batch and returns the report. Per-entry provider failures
// are recorded and the run continues; only context cancellation stops it
// early. Entries with empty meanings must be filtered out beforehand (see
// Filter).
func (r *Runner) Run(ctx context.Context, entries []ReferenceEntry) *Report {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	systemPrompt := r.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	if r.MaxTests > 0 && len(entries) > r.MaxTests {
		entries = entries[:r.MaxTests]
	}

	report := &Report{GeneratedAt: time.Now().Format(time.RFC3339)}
	for i, entry := range entries {
		if i > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.Delay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		fmt.Fprintf(out, "[%d/%d] %s: ", i+1, len(entries), entry.Headword)

		result := r.runOne(ctx, entry, systemPrompt)
		report.Results = append(report.Results, result)
		if result.Passed {
			report.Summary.Passed++
			fmt.Fprintf(out, "%s (%d%%)\n", passLabel("PASS"), result.MatchPercent)
		} else {
			report.Summary.Failed++
			if result.Error != "" {
				fmt.Fprintf(out, "%s (%s)\n", failLabel("FAIL"), result.Error)
			} else {
				fmt.Fprintf(out, "%s (%d%%)\n", failLabel("FAIL"), result.MatchPercent)
			}
		}
	}

	report.Summary.TotalTests = len(report.Results)
	report.Summary.PassRate = passRate(report.Summary.Passed, report.Summary.TotalTests)
	return report
}

// runOne obtains a candidate answer and scores it. A provider failure yields
// a failed result, never an aborted run.
func (r *Runner) runOne(ctx context.Context, entry ReferenceEntry, systemPrompt string) Result {
	messages := []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: systemPrompt},
		{Role: providers.RoleUser, Content: fmt.Sprintf("What does the word %q mean in English?", entry.Headword)},
	}

	completion, err := r.Provider.GenerateResponse(ctx, messages, providers.GenerateOptions{})
	if err != nil {
		logging.LogEvent("verification call failed for %q: %v", entry.Headword, err)
		return Result{
			Headword: entry.Headword,
			Meaning:  entry.Meaning,
			Provider: r.Provider.ProviderName(),
			Error:    err.Error(),
		}
	}

	result := Score(entry, completion.Text)
	result.Provider = completion.Provider
	result.Model = completion.Model
	// Overall pass policy: either the meaning overlap clears the threshold or
	// the candidate names the headword itself.
	result.Passed = result.IsAccurate || result.WordMatch
	return result
}

// Filter returns only the entries eligible for verification: a non-empty
// headword and a non-empty meaning.
func Filter(entries []ReferenceEntry) []ReferenceEntry {
	eligible := make([]ReferenceEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Headword) == "" || strings.TrimSpace(e.Meaning) == "" {
			continue
		}
		eligible = append(eligible, e)
	}
	return eligible
}

// WriteReport writes the report as indented JSON into dir and returns the
// file path.
func WriteReport(report *Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding report: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("verify_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing report: %w", err)
	}
	return path, nil
}

func passRate(passed, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(passed)/float64(total)*100)
}
