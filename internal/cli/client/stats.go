package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Stats represents the stats API response.
type Stats struct {
	Transcripts      int64            `json:"transcripts"`
	Chunks           int64            `json:"chunks"`
	ByTicker         map[string]int64 `json:"by_ticker"`
	BySource         map[string]int64 `json:"by_source"`
	JobsByStatus     map[string]int64 `json:"jobs_by_status"`
	TrackedCompanies int              `json:"tracked_companies"`
	CoveredCompanies int              `json:"covered_companies"`
	LastUpdate       string           `json:"last_update,omitempty"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/v1/stats")
			if err != nil {
				return err
			}

			var stats Stats
			if err := json.Unmarshal(resp.Data, &stats); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				return printJSON(stats)
			}

			fmt.Printf("transcripts: %d\n", stats.Transcripts)
			fmt.Printf("chunks:      %d\n", stats.Chunks)
			fmt.Printf("companies:   %d of %d covered\n", stats.CoveredCompanies, stats.TrackedCompanies)
			if stats.LastUpdate != "" {
				fmt.Printf("last update: %s\n", stats.LastUpdate)
			}

			if len(stats.ByTicker) > 0 {
				fmt.Println()
				color.New(color.Bold).Println("by ticker")
				for _, ticker := range sortedKeys(stats.ByTicker) {
					fmt.Printf("  %-6s %d\n", ticker, stats.ByTicker[ticker])
				}
			}
			if len(stats.JobsByStatus) > 0 {
				fmt.Println()
				color.New(color.Bold).Println("embedding jobs")
				for _, status := range sortedKeys(stats.JobsByStatus) {
					fmt.Printf("  %-12s %d\n", status, stats.JobsByStatus[status])
				}
			}
			return nil
		},
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
