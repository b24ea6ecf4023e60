// internal/cli/show_config.go
package cli

import (
	"fmt"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/appconfig"
)

// showConfigCmd dumps the fully merged configuration with credentials masked.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Show the effective configuration after file, environment, and flag merging.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		fmt.Printf("Config file: %s\n\n", cfg.ConfigPath)
		pp.Println(redacted(*cfg))
	},
}

// redacted returns a copy of the configuration with API keys masked so the
// dump is safe to paste into an issue.
func redacted(cfg appconfig.Config) appconfig.Config {
	providers := make(map[string]appconfig.ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.APIKey != "" {
			p.APIKey = maskKey(p.APIKey)
		}
		providers[name] = p
	}
	cfg.Providers = providers
	return cfg
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
