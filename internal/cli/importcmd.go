// internal/cli/importcmd.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/store"
)

// importCmd loads dictionary entries from a JSON file into the database.
var importCmd = &cobra.Command{
	Use:   "import <entries.json>",
	Short: "Import dictionary entries from a JSON file",
	Long: `The 'import' command reads a JSON array of dictionary entries and inserts
them into the configured database. Records without a headword or meaning are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		db, err := store.NewSQLite(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		count, err := db.ImportJSON(args[0])
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries into %s\n", count, cfg.Database.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
