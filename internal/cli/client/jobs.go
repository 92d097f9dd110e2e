package client

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ScheduledJob represents a scheduled job in API responses.
type ScheduledJob struct {
	Name      string `json:"name"`
	Schedule  string `json:"schedule"`
	NextRun   string `json:"next_run,omitempty"`
	LastRun   string `json:"last_run,omitempty"`
	LastError string `json:"last_error,omitempty"`
	Running   bool   `json:"running"`
}

// JobsCmd creates the jobs command group.
func JobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage scheduled jobs",
	}
	cmd.AddCommand(jobsListCmd())
	cmd.AddCommand(jobsRunCmd())
	return cmd
}

func jobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/v1/jobs")
			if err != nil {
				return err
			}

			var jobs []ScheduledJob
			if err := json.Unmarshal(resp.Data, &jobs); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				return printJSON(jobs)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSCHEDULE\tNEXT RUN\tLAST RUN\tSTATUS")
			for _, job := range jobs {
				status := "idle"
				if job.Running {
					status = "running"
				} else if job.LastError != "" {
					status = "error: " + job.LastError
				}
				nextRun := job.NextRun
				if nextRun == "" {
					nextRun = "-"
				}
				lastRun := job.LastRun
				if lastRun == "" {
					lastRun = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", job.Name, job.Schedule, nextRun, lastRun, status)
			}
			return w.Flush()
		},
	}
}

func jobsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Trigger a scheduled job immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			if _, err := api.Post(fmt.Sprintf("/v1/jobs/%s/run", args[0]), nil); err != nil {
				return err
			}

			color.Green("Triggered job %s", args[0])
			return nil
		},
	}
}
