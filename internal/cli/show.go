// internal/cli/show.go
package cli

import (
	"github.com/spf13/cobra"
)

// showCmd groups the read-only inspection subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect application state",
}

func init() {
	rootCmd.AddCommand(showCmd)
}
