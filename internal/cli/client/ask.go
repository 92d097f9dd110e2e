package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string      `json:"question"`
	Filters  *AskFilters `json:"filters,omitempty"`
	TopK     int         `json:"top_k,omitempty"`
}

// AskFilters narrows a question to a company or period.
type AskFilters struct {
	Ticker  string `json:"ticker,omitempty"`
	Year    int    `json:"year,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
}

// AskSource describes one transcript chunk behind an answer.
type AskSource struct {
	Ticker  string  `json:"ticker"`
	Year    int     `json:"year"`
	Quarter int     `json:"quarter"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Answer     string      `json:"answer"`
	Confidence float64     `json:"confidence"`
	Sources    []AskSource `json:"sources"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		ticker  string
		year    int
		quarter int
		topK    int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the earnings calls",
		Long:  "Asks a natural-language question over the embedded earnings call corpus and prints the generated answer with its sources.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), ticker, year, quarter, topK, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "Restrict to one company")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Restrict to one year")
	cmd.Flags().IntVarP(&quarter, "quarter", "q", 0, "Restrict to one quarter (1-4)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of passages to retrieve")

	return cmd
}

func runAsk(cmd *cobra.Command, question, ticker string, year, quarter, topK int, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	req := AskRequest{Question: question, TopK: topK}
	if ticker != "" || year != 0 || quarter != 0 {
		req.Filters = &AskFilters{Ticker: ticker, Year: year, Quarter: quarter}
	}

	resp, err := api.Post("/v1/ask", req)
	if err != nil {
		return err
	}

	var out AskResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(out)
	}

	fmt.Println(out.Answer)
	fmt.Println()
	color.New(color.Faint).Printf("confidence: %.0f%%\n", out.Confidence*100)
	for _, src := range out.Sources {
		color.New(color.Faint).Printf("  [%s %d Q%d] score %.2f\n", src.Ticker, src.Year, src.Quarter, src.Score)
	}

	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
