package client

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ExtractRequest represents the extract API request.
type ExtractRequest struct {
	Ticker  string `json:"ticker"`
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
}

// ExtractBatchRequest represents the batch extract API request.
type ExtractBatchRequest struct {
	Tickers  []string `json:"tickers,omitempty"`
	Years    []int    `json:"years,omitempty"`
	Quarters []int    `json:"quarters,omitempty"`
}

// BatchOutcome reports one cell of a batch extraction run.
type BatchOutcome struct {
	Ticker       string `json:"ticker"`
	Year         int    `json:"year"`
	Quarter      int    `json:"quarter"`
	TranscriptID string `json:"transcript_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ExtractBatchResponse represents the batch extract API response.
type ExtractBatchResponse struct {
	Requested int            `json:"requested"`
	Stored    int            `json:"stored"`
	Failed    int            `json:"failed"`
	Outcomes  []BatchOutcome `json:"outcomes"`
}

// ExtractCmd creates the extract command.
func ExtractCmd() *cobra.Command {
	var (
		tickers  []string
		years    []int
		quarters []int
	)

	cmd := &cobra.Command{
		Use:   "extract [ticker year quarter]",
		Short: "Extract earnings transcripts",
		Long: `Triggers transcript extraction on the server.

With three positional arguments it extracts a single company/period; with
flags (or nothing) it runs a batch over the requested grid.`,
		Args: cobra.RangeArgs(0, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if len(args) == 3 {
				return runExtractOne(cmd, args, outputJSON)
			}
			if len(args) != 0 {
				return fmt.Errorf("expected either no arguments or <ticker> <year> <quarter>")
			}
			return runExtractBatch(cmd, tickers, years, quarters, outputJSON)
		},
	}

	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "Tickers for batch extraction (default: all)")
	cmd.Flags().IntSliceVar(&years, "years", nil, "Years for batch extraction (default: full window)")
	cmd.Flags().IntSliceVar(&quarters, "quarters", nil, "Quarters for batch extraction (default: 1-4)")

	return cmd
}

func runExtractOne(cmd *cobra.Command, args []string, outputJSON bool) error {
	var year, quarter int
	if _, err := fmt.Sscanf(args[1], "%d", &year); err != nil {
		return fmt.Errorf("invalid year: %s", args[1])
	}
	if _, err := fmt.Sscanf(args[2], "%d", &quarter); err != nil {
		return fmt.Errorf("invalid quarter: %s", args[2])
	}

	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/v1/extract", ExtractRequest{Ticker: args[0], Year: year, Quarter: quarter})
	if err != nil {
		return err
	}

	if outputJSON {
		var out json.RawMessage = resp.Data
		return printJSON(out)
	}

	color.Green("extracted %s %d Q%d", args[0], year, quarter)
	return nil
}

func runExtractBatch(cmd *cobra.Command, tickers []string, years, quarters []int, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/v1/extract/batch", ExtractBatchRequest{
		Tickers:  tickers,
		Years:    years,
		Quarters: quarters,
	})
	if err != nil {
		return err
	}

	var out ExtractBatchResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(out)
	}

	for _, o := range out.Outcomes {
		if o.Error != "" {
			color.Red("  %s %d Q%d: %s", o.Ticker, o.Year, o.Quarter, o.Error)
		}
	}
	color.Green("extracted %d of %d transcripts (%d failed)", out.Stored, out.Requested, out.Failed)
	return nil
}
