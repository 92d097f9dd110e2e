package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query   string      `json:"query"`
	Filters *AskFilters `json:"filters,omitempty"`
	Limit   int         `json:"limit,omitempty"`
}

// SearchResult represents one matched transcript chunk.
type SearchResult struct {
	TranscriptID string  `json:"transcript_id"`
	Ticker       string  `json:"ticker"`
	Year         int     `json:"year"`
	Quarter      int     `json:"quarter"`
	ChunkIndex   int     `json:"chunk_index"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		ticker  string
		year    int
		quarter int
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the transcript corpus",
		Long:  "Runs a semantic similarity search over the embedded transcript chunks without generating an answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, strings.Join(args, " "), ticker, year, quarter, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "Restrict to one company")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Restrict to one year")
	cmd.Flags().IntVarP(&quarter, "quarter", "q", 0, "Restrict to one quarter (1-4)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query, ticker string, year, quarter, limit int, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	req := SearchRequest{Query: query, Limit: limit}
	if ticker != "" || year != 0 || quarter != 0 {
		req.Filters = &AskFilters{Ticker: ticker, Year: year, Quarter: quarter}
	}

	resp, err := api.Post("/v1/search", req)
	if err != nil {
		return err
	}

	var results []SearchResult
	if err := json.Unmarshal(resp.Data, &results); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No matching chunks found.")
		return nil
	}

	for _, r := range results {
		color.New(color.Bold).Printf("[%s %d Q%d] ", r.Ticker, r.Year, r.Quarter)
		color.New(color.Faint).Printf("score %.2f\n", r.Score)
		fmt.Println(truncate(r.Content, 300))
		fmt.Println()
	}

	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
