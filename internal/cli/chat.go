// internal/cli/chat.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/koshalabs/kosha/internal/tui"
)

var startChat = tui.Run

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `The 'chat' command opens a terminal chat session with one of the configured providers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startChat(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
