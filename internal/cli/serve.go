// internal/cli/serve.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/logging"
	"github.com/koshalabs/kosha/internal/providerfactory"
	"github.com/koshalabs/kosha/internal/providers"
	"github.com/koshalabs/kosha/internal/server"
	"github.com/koshalabs/kosha/internal/store"
)

// serveCmd starts the HTTP backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dictionary HTTP server",
	Long:  `The 'serve' command opens the dictionary database and serves the HTTP API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		db, err := store.NewSQLite(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		var provider providers.ChatProvider
		if cfg.LLM.Enabled {
			provider, err = providerfactory.NewChatProvider(cfg, "")
			if err != nil {
				// The dictionary works without a provider; chat reports 503.
				logging.LogEvent("provider unavailable, serving without LLM features: %v", err)
				cfg.LLM.Enabled = false
			}
		}

		return server.New(cfg, db, provider).ListenAndServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
