package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindtube/curator/internal/curation"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current curation run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	status, err := apiClient.Status(ctx)
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	if status.JobID == "" {
		fmt.Println("No curation run has been started")
		return nil
	}

	fmt.Printf("Run: %s\n", status.JobID)
	fmt.Printf("  Status: %s\n", status.Status)
	if status.Status == curation.StatusRunning {
		fmt.Printf("  Action: %s\n", status.CurrentAction)
	}
	fmt.Printf("  Items: %d/%d processed, %d approved, %d rejected\n",
		status.ProcessedItems, status.TotalItems, status.ApprovedItems, status.RejectedItems)
	fmt.Printf("  Quota: metadata %d/%d, evaluation %d/%d\n",
		status.Quota.MetadataUsed, status.Quota.MetadataLimit,
		status.Quota.EvaluationUsed, status.Quota.EvaluationLimit)
	fmt.Printf("  Started: %s\n", status.StartedAt.Format(time.RFC3339))
	if status.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", status.CompletedAt.Format(time.RFC3339))
		fmt.Printf("  Duration: %s\n", status.CompletedAt.Sub(status.StartedAt).Round(time.Second))
	} else if status.EstimatedCompletion != nil {
		fmt.Printf("  ETA: %s\n", status.EstimatedCompletion.Format(time.RFC3339))
	}

	if len(status.Errors) > 0 {
		fmt.Printf("  Errors (%d):\n", len(status.Errors))
		for _, e := range status.Errors {
			fmt.Printf("    • %s\n", e)
		}
	}

	return nil
}
