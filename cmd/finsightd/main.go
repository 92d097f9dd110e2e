package main

import (
	"fmt"
	"os"

	"github.com/finsight-ai/finsight/internal/cli"
	"github.com/finsight-ai/finsight/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finsightd",
		Short: "FinSight daemon and CLI",
		Long:  "FinSight daemon for running the API server and managing the transcript corpus",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ExtractCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
