package commands

import (
	"github.com/spf13/cobra"

	"github.com/marshallshelly/forkline/cmd/forkline/tui"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse reports interactively",
	Long: `Open an interactive terminal browser over the twenty reports. Select a
report to run it and view its result table in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.RunBrowser(connect)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
