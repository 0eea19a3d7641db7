// Package cli provides the command-line interface for the curator
// server's run-control API.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mindtube/curator/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string

	// API client, created before every command runs.
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Control the automated content-curation pipeline",
	Long: `Curator discovers channels on the video platform, filters and
evaluates their recent uploads, and stores approved items in the
content library.

The pipeline runs inside curator-server; this CLI starts, stops, and
observes runs over the server's HTTP API.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.New(serverURL)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"curator server URL (default CURATOR_SERVER_URL or http://localhost:8787)")
}
