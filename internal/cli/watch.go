package cli

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the active curation run live",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunProgress(apiClient)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
