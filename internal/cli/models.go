// internal/cli/models.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/providerfactory"
)

var modelsProvider string

// modelsCmd lists the models a provider advertises.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available from a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := providerfactory.NewChatProvider(GetConfig(), modelsProvider)
		if err != nil {
			return err
		}
		models, err := provider.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d models):\n", provider.ProviderName(), len(models))
		for _, model := range models {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", model)
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "provider to query (defaults to llm.provider)")
	rootCmd.AddCommand(modelsCmd)
}
