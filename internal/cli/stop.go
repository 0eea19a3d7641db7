package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindtube/curator/internal/client"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active curation run",
	Long: `Ask the active run to stop at its next checkpoint. The item
currently being evaluated finishes; nothing new is started.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := apiClient.Stop(ctx); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			fmt.Println("No active curation run")
			return nil
		}
		return fmt.Errorf("stop run: %w", err)
	}

	fmt.Println("Stop requested; the run will halt at its next checkpoint")
	return nil
}
