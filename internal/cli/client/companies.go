package client

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Company represents one tracked company from the API.
type Company struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	CIK    string `json:"cik,omitempty"`
}

// CompaniesCmd creates the companies command.
func CompaniesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List the tracked companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/v1/companies")
			if err != nil {
				return err
			}

			var companies []Company
			if err := json.Unmarshal(resp.Data, &companies); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				return printJSON(companies)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tNAME\tSECTOR\tCIK")
			for _, c := range companies {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Ticker, c.Name, c.Sector, c.CIK)
			}
			return w.Flush()
		},
	}
}
