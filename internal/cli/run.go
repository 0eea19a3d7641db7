package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindtube/curator/internal/client"
)

var runWatch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a curation run",
	Long: `Start a curation run on the server. The run executes in the
background; use 'curator status' or 'curator watch' to observe it.

Examples:
  curator run           # Start and return immediately
  curator run --watch   # Start and attach the live progress view`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "attach the live progress view")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	jobID, err := apiClient.Start(ctx)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			return fmt.Errorf("a curation run is already active; use 'curator watch' to observe it")
		}
		return fmt.Errorf("start run: %w", err)
	}

	fmt.Printf("Started curation run %s\n", jobID)

	if runWatch {
		return RunProgress(apiClient)
	}

	fmt.Println("Use 'curator status' to check progress")
	return nil
}
