package admin

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/internal/config"
	"github.com/finsight-ai/finsight/internal/database"
	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/extractor"
	"github.com/finsight-ai/finsight/internal/repository"
	"github.com/finsight-ai/finsight/internal/service"
)

// ExtractCmd returns the extract command, which runs batch extraction
// directly against the database without going through the API.
func ExtractCmd() *cobra.Command {
	var (
		tickers  []string
		years    []int
		quarters []int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract earnings transcripts into the database",
		Long:  "Fetch earnings call material for the tracked companies and store it, queueing embedding jobs for each transcript.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), tickers, years, quarters)
		},
	}

	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "Tickers to extract (default: all tracked companies)")
	cmd.Flags().IntSliceVar(&years, "years", nil, "Years to extract (default: full coverage window)")
	cmd.Flags().IntSliceVar(&quarters, "quarters", nil, "Quarters to extract (default: 1-4)")

	return cmd
}

func runExtract(ctx context.Context, tickers []string, years, quarters []int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if len(tickers) == 0 {
		tickers = domain.AllTickers()
	}
	for _, ticker := range tickers {
		if !domain.IsValidTicker(ticker) {
			return fmt.Errorf("unknown ticker: %s", ticker)
		}
	}

	if len(years) == 0 {
		years = domain.Years()
	}
	if len(quarters) == 0 {
		quarters = []int{1, 2, 3, 4}
	}

	periods := make([]domain.Period, 0, len(years)*len(quarters))
	for _, year := range years {
		for _, quarter := range quarters {
			period := domain.Period{Year: year, Quarter: quarter}
			if err := period.Validate(); err != nil {
				return err
			}
			periods = append(periods, period)
		}
	}

	svc := service.NewExtractionService(
		buildExtractor(cfg, extractor.NewRawStore(cfg.DataDir)),
		repository.NewTxRunner(pool),
	)

	total := len(tickers) * len(periods)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("extracting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	summary, err := svc.ExtractBatch(ctx, tickers, periods, func(outcome service.BatchOutcome) {
		_ = bar.Add(1)
		if outcome.Err != nil {
			color.Red("  %s %s: %v", outcome.Ticker, outcome.Period, outcome.Err)
		}
	})
	if err != nil {
		return err
	}

	color.Green("extracted %d of %d transcripts (%d failed)", summary.Stored, summary.Requested, summary.Failed)
	return nil
}
