package service

import (
	"context"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/extractor"
	"github.com/finsight-ai/finsight/internal/telemetry"
)

// ExtractorInterface defines the extraction chain used to pull transcripts.
type ExtractorInterface interface {
	Extract(ctx context.Context, ticker string, period domain.Period) (*extractor.Result, error)
}

// ExtractionService pulls earnings material through the extractor chain and
// persists it: transcript upsert plus a queued embedding job, atomically.
type ExtractionService struct {
	extractor ExtractorInterface
	txRunner  TxRunner
	uuidGen   UUIDGenerator
}

func NewExtractionService(ext ExtractorInterface, txRunner TxRunner) *ExtractionService {
	return &ExtractionService{
		extractor: ext,
		txRunner:  txRunner,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewExtractionServiceWithUUIDGen creates an ExtractionService with a custom UUID generator (for testing)
func NewExtractionServiceWithUUIDGen(ext ExtractorInterface, txRunner TxRunner, uuidGen UUIDGenerator) *ExtractionService {
	return &ExtractionService{
		extractor: ext,
		txRunner:  txRunner,
		uuidGen:   uuidGen,
	}
}

// ExtractAndStore fetches the transcript for one company and period and
// stores it. Re-extraction replaces the stored content and queues a fresh
// embedding job; stale chunks are replaced when the job runs.
func (s *ExtractionService) ExtractAndStore(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error) {
	ctx, span := telemetry.StartSpan(ctx, "ExtractionService.ExtractAndStore", telemetry.SpanAttributes{
		Ticker:    ticker,
		Period:    period.String(),
		Operation: "extract",
	})
	defer span.End()

	res, err := s.extractor.Extract(ctx, ticker, period)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	now := time.Now().UTC()
	transcript := &domain.Transcript{
		ID:        s.uuidGen.NewString(),
		Ticker:    res.Company.Ticker,
		Year:      period.Year,
		Quarter:   period.Quarter,
		Source:    res.Source,
		CallDate:  res.CallDate,
		Content:   res.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := domain.ValidateTranscript(transcript); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid transcript", err)
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		// Upsert resolves the ID: on replace it becomes the existing row's.
		if err := repos.Transcripts().Upsert(ctx, transcript); err != nil {
			return err
		}

		job := domain.NewEmbeddingJob(s.uuidGen.NewString(), transcript.ID, now)
		return repos.EmbeddingJobs().Create(ctx, job)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return transcript, nil
}

// BatchSummary aggregates one batch extraction run.
type BatchSummary struct {
	Requested int
	Stored    int
	Failed    int
	Outcomes  []BatchOutcome
}

// BatchOutcome reports one ticker/period cell of a batch run.
type BatchOutcome struct {
	Ticker     string
	Period     domain.Period
	Transcript *domain.Transcript
	Err        error
}

// ExtractBatch walks the ticker x period grid, storing what it can. Failures
// are recorded per cell, never aborting the run.
func (s *ExtractionService) ExtractBatch(ctx context.Context, tickers []string, periods []domain.Period, onProgress func(BatchOutcome)) (*BatchSummary, error) {
	summary := &BatchSummary{Requested: len(tickers) * len(periods)}

	for _, ticker := range tickers {
		for _, period := range periods {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			transcript, err := s.ExtractAndStore(ctx, ticker, period)
			outcome := BatchOutcome{Ticker: ticker, Period: period, Transcript: transcript, Err: err}
			if err != nil {
				summary.Failed++
			} else {
				summary.Stored++
			}
			summary.Outcomes = append(summary.Outcomes, outcome)
			if onProgress != nil {
				onProgress(outcome)
			}
		}
	}

	return summary, nil
}
