package main

import (
	"fmt"
	"os"

	"github.com/finsight-ai/finsight/internal/cli"
	"github.com/finsight-ai/finsight/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "finsight",
		Short: "FinSight CLI - Earnings call research assistant",
		Long: `FinSight CLI provides commands to search and question earnings call transcripts.

Environment variables:
  FINSIGHT_API_KEY   API key for authentication (optional for open servers)
  FINSIGHT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ExtractCmd())
	rootCmd.AddCommand(client.TranscriptsCmd())
	rootCmd.AddCommand(client.CompaniesCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.JobsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
