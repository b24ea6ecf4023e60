// internal/cli/verify.go
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/providerfactory"
	"github.com/koshalabs/kosha/internal/store"
	"github.com/koshalabs/kosha/internal/verify"
)

var (
	verifyProvider string
	verifySuite    string
	verifyMax      int
	verifyDelay    time.Duration
	verifyOut      string
)

// verifyCmd runs the batch accuracy harness against one provider.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify provider answers against reference dictionary entries",
	Long: `The 'verify' command asks the provider for the meaning of each reference
headword, scores the answers by word overlap, and writes a JSON report.

Entries come from a suite file (--suite) or, by default, from every database
entry that has a meaning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		provider, err := providerfactory.NewChatProvider(cfg, verifyProvider)
		if err != nil {
			return err
		}

		var entries []verify.ReferenceEntry
		systemPrompt := ""
		if verifySuite != "" {
			suite, err := verify.LoadSuite(verifySuite)
			if err != nil {
				return fmt.Errorf("load suite: %w", err)
			}
			entries = suite.Entries
			systemPrompt = suite.SystemPrompt
		} else {
			db, err := store.NewSQLite(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			rows, err := db.WithMeanings(0)
			if err != nil {
				return fmt.Errorf("load entries: %w", err)
			}
			for _, row := range rows {
				entries = append(entries, verify.ReferenceEntry{
					Headword:     row.Headword,
					Meaning:      row.Meaning,
					NativeScript: row.NativeScript,
				})
			}
		}

		entries = verify.Filter(entries)
		if len(entries) == 0 {
			return fmt.Errorf("no usable reference entries (need headword and meaning)")
		}

		delay := verifyDelay
		if !cmd.Flags().Changed("delay") {
			delay = cfg.VerifyDelay()
		}
		maxTests := verifyMax
		if !cmd.Flags().Changed("max") {
			maxTests = cfg.Verify.MaxTests
		}
		outDir := verifyOut
		if outDir == "" {
			outDir = cfg.ResultsDir()
		}

		runner := &verify.Runner{
			Provider:     provider,
			Delay:        delay,
			MaxTests:     maxTests,
			SystemPrompt: systemPrompt,
			Out:          cmd.OutOrStdout(),
		}
		report := runner.Run(cmd.Context(), entries)

		path, err := verify.WriteReport(report, outDir)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d passed (%s), report: %s\n",
			report.Summary.Passed, report.Summary.TotalTests, report.Summary.PassRate, path)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyProvider, "provider", "p", "", "provider to verify (defaults to llm.provider)")
	verifyCmd.Flags().StringVarP(&verifySuite, "suite", "s", "", "JSON suite file of reference entries")
	verifyCmd.Flags().IntVarP(&verifyMax, "max", "m", 0, "maximum number of entries to test (0 = all)")
	verifyCmd.Flags().DurationVarP(&verifyDelay, "delay", "d", time.Second, "pause between provider calls")
	verifyCmd.Flags().StringVarP(&verifyOut, "out", "o", "", "directory for the JSON report")
	rootCmd.AddCommand(verifyCmd)
}
