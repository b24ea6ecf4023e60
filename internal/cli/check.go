// internal/cli/check.go
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/providerfactory"
)

var (
	checkOK   = color.New(color.FgGreen).SprintFunc()
	checkFail = color.New(color.FgRed).SprintFunc()
)

// checkCmd probes every registered provider and reports which are reachable
// with the current configuration. An unreachable provider is reported, not
// fatal; the command fails only if none respond.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity for all configured providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		reachable := 0
		for _, name := range providerfactory.Available() {
			provider, err := providerfactory.NewChatProvider(cfg, name)
			if err == nil {
				err = provider.ValidateConnection(cmd.Context())
			}
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s %v\n", name, checkFail("FAIL"), err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, checkOK("OK"))
			reachable++
		}
		if reachable == 0 {
			return fmt.Errorf("no providers reachable")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
