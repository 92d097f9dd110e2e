package client

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Transcript represents a transcript record from the API.
type Transcript struct {
	ID       string `json:"id"`
	Ticker   string `json:"ticker"`
	Year     int    `json:"year"`
	Quarter  int    `json:"quarter"`
	Source   string `json:"source"`
	CallDate string `json:"call_date"`
	Content  string `json:"content,omitempty"`
	Chars    int    `json:"chars"`
}

// TranscriptList represents the list API response.
type TranscriptList struct {
	Items   []Transcript `json:"items"`
	Cursor  string       `json:"cursor,omitempty"`
	HasMore bool         `json:"has_more"`
}

// TranscriptsCmd creates the transcripts command group.
func TranscriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Manage stored transcripts",
	}

	cmd.AddCommand(transcriptsListCmd())
	cmd.AddCommand(transcriptsGetCmd())
	cmd.AddCommand(transcriptsDeleteCmd())
	cmd.AddCommand(transcriptsResetCmd())

	return cmd
}

func transcriptsListCmd() *cobra.Command {
	var (
		ticker  string
		year    int
		quarter int
		limit   int
		cursor  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			path := "/v1/transcripts?" + periodQuery(ticker, year, quarter)
			if limit > 0 {
				path += fmt.Sprintf("limit=%d&", limit)
			}
			if cursor != "" {
				path += "cursor=" + cursor
			}

			resp, err := api.Get(path)
			if err != nil {
				return err
			}

			var list TranscriptList
			if err := json.Unmarshal(resp.Data, &list); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				return printJSON(list)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTICKER\tPERIOD\tSOURCE\tCALL DATE\tCHARS")
			for _, t := range list.Items {
				fmt.Fprintf(w, "%s\t%s\t%d Q%d\t%s\t%s\t%d\n", t.ID, t.Ticker, t.Year, t.Quarter, t.Source, t.CallDate, t.Chars)
			}
			w.Flush()

			if list.HasMore {
				fmt.Printf("\nmore results: --cursor %s\n", list.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "Filter by ticker")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Filter by year")
	cmd.Flags().IntVarP(&quarter, "quarter", "q", 0, "Filter by quarter (1-4)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

// periodQuery renders ticker/year/quarter filters as query parameters, each
// followed by "&" so callers can append more.
func periodQuery(ticker string, year, quarter int) string {
	q := ""
	if ticker != "" {
		q += "ticker=" + ticker + "&"
	}
	if year > 0 {
		q += fmt.Sprintf("year=%d&", year)
	}
	if quarter > 0 {
		q += fmt.Sprintf("quarter=%d&", quarter)
	}
	return q
}

func transcriptsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a transcript including its full text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/v1/transcripts/" + args[0])
			if err != nil {
				return err
			}

			var t Transcript
			if err := json.Unmarshal(resp.Data, &t); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				return printJSON(t)
			}

			color.New(color.Bold).Printf("%s %d Q%d", t.Ticker, t.Year, t.Quarter)
			color.New(color.Faint).Printf("  (%s, %s)\n\n", t.Source, t.CallDate)
			fmt.Println(t.Content)
			return nil
		},
	}
}

func transcriptsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transcript and its embeddings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			if _, err := api.Delete("/v1/transcripts/" + args[0]); err != nil {
				return err
			}

			color.Green("deleted %s", args[0])
			return nil
		},
	}
}

// ResetResult represents the bulk-delete API response.
type ResetResult struct {
	DeletedTranscripts int64 `json:"deleted_transcripts"`
	DeletedChunks      int64 `json:"deleted_chunks"`
}

func transcriptsResetCmd() *cobra.Command {
	var (
		ticker  string
		year    int
		quarter int
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Bulk-delete transcripts and their embeddings",
		Long:  "Deletes every stored transcript and its chunk embeddings, optionally narrowed to a company or period with flags. Requires --yes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to bulk-delete without --yes")
			}

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Delete("/v1/transcripts?" + periodQuery(ticker, year, quarter))
			if err != nil {
				return err
			}

			var result ResetResult
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return printJSON(result)
			}

			color.Green("deleted %d transcripts and %d chunks", result.DeletedTranscripts, result.DeletedChunks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "Restrict to one company")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Restrict to one year")
	cmd.Flags().IntVarP(&quarter, "quarter", "q", 0, "Restrict to one quarter (1-4)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the bulk delete")

	return cmd
}
