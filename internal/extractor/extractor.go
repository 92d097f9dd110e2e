package extractor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
)

// Result is one extraction outcome before persistence.
type Result struct {
	Company  domain.Company
	Period   domain.Period
	Source   domain.TranscriptSource
	Content  string
	CallDate time.Time
}

// Source is one provider in the extraction chain.
type Source interface {
	Name() domain.TranscriptSource
	Fetch(ctx context.Context, company domain.Company, period domain.Period) (*Result, error)
}

// Extractor tries each configured source in order until one yields content.
// The sample source, when configured last, makes extraction infallible.
type Extractor struct {
	sources []Source
	store   *RawStore
}

// New creates an Extractor over an ordered source chain. store may be nil to
// skip raw payload persistence.
func New(sources []Source, store *RawStore) *Extractor {
	return &Extractor{sources: sources, store: store}
}

// Extract fetches the transcript for one company and period, walking the
// source chain in order.
func (e *Extractor) Extract(ctx context.Context, ticker string, period domain.Period) (*Result, error) {
	company, ok := domain.LookupCompany(ticker)
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPeriod, err)
	}

	var lastErr error
	for _, src := range e.sources {
		res, err := src.Fetch(ctx, company, period)
		if err != nil {
			log.Printf("extractor: %s failed for %s %s: %v", src.Name(), company.Ticker, period, err)
			lastErr = err
			continue
		}
		if res.Content == "" {
			lastErr = fmt.Errorf("%s returned empty content", src.Name())
			continue
		}

		if e.store != nil {
			if _, err := e.store.Save(ctx, res); err != nil {
				log.Printf("extractor: failed to store raw payload for %s %s: %v", company.Ticker, period, err)
			}
		}
		return res, nil
	}

	return nil, fmt.Errorf("%w: all sources exhausted for %s %s: %v",
		domain.ErrExtractionFailed, company.Ticker, period, lastErr)
}

// BatchOutcome reports one cell of a batch extraction grid.
type BatchOutcome struct {
	Ticker string
	Period domain.Period
	Result *Result
	Err    error
}

// ExtractBatch walks the ticker x period grid sequentially, respecting source
// rate limits. onProgress, when non-nil, is invoked after every cell.
func (e *Extractor) ExtractBatch(ctx context.Context, tickers []string, periods []domain.Period, onProgress func(BatchOutcome)) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, 0, len(tickers)*len(periods))

	for _, ticker := range tickers {
		for _, period := range periods {
			if err := ctx.Err(); err != nil {
				return outcomes, err
			}

			res, err := e.Extract(ctx, ticker, period)
			outcome := BatchOutcome{Ticker: ticker, Period: period, Result: res, Err: err}
			outcomes = append(outcomes, outcome)
			if onProgress != nil {
				onProgress(outcome)
			}
		}
	}

	return outcomes, nil
}
