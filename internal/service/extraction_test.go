package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/extractor"
	"github.com/finsight-ai/finsight/internal/pagination"
)

// MockExtractor is a mock implementation of ExtractorInterface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, ticker string, period domain.Period) (*extractor.Result, error) {
	args := m.Called(ctx, ticker, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extractor.Result), args.Error(1)
}

// MockTranscriptRepository is a mock implementation of TranscriptRepositoryInterface
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Upsert(ctx context.Context, t *domain.Transcript) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTranscriptRepository) GetByID(ctx context.Context, id string) (*domain.Transcript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) GetByPeriod(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error) {
	args := m.Called(ctx, ticker, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) ListWithCursor(ctx context.Context, filters SearchFilters, cursor *pagination.Cursor, limit int) (*TranscriptPageResult, error) {
	args := m.Called(ctx, filters, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TranscriptPageResult), args.Error(1)
}

func (m *MockTranscriptRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTranscriptRepository) DeleteByFilters(ctx context.Context, filters SearchFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmbeddingJobRepository is a mock implementation of EmbeddingJobRepositoryInterface
type MockEmbeddingJobRepository struct {
	mock.Mock
}

func (m *MockEmbeddingJobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// fakeTxRunner runs the transaction body against plain mocks, no real tx.
type fakeTxRunner struct {
	transcripts *MockTranscriptRepository
	jobs        *MockEmbeddingJobRepository
	err         error
}

func (r *fakeTxRunner) Transcripts() TranscriptRepositoryInterface     { return r.transcripts }
func (r *fakeTxRunner) EmbeddingJobs() EmbeddingJobRepositoryInterface { return r.jobs }

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if r.err != nil {
		return r.err
	}
	return fn(r)
}

// fixedUUIDGenerator returns a deterministic sequence of IDs.
type fixedUUIDGenerator struct {
	next int
}

func (g *fixedUUIDGenerator) NewString() string {
	g.next++
	return fmt.Sprintf("uuid-%d", g.next)
}

func testExtractionResult(ticker string, period domain.Period) *extractor.Result {
	company, _ := domain.LookupCompany(ticker)
	return &extractor.Result{
		Company:  company,
		Period:   period,
		Source:   domain.TranscriptSourceSample,
		Content:  "Revenue for the quarter was $12.5 billion, up 15% year-over-year. Management highlighted continued demand strength across the data center segment and reiterated full-year guidance.",
		CallDate: time.Date(period.Year, 2, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestExtractionService_ExtractAndStore(t *testing.T) {
	ext := new(MockExtractor)
	transcripts := new(MockTranscriptRepository)
	jobs := new(MockEmbeddingJobRepository)
	runner := &fakeTxRunner{transcripts: transcripts, jobs: jobs}
	svc := NewExtractionServiceWithUUIDGen(ext, runner, &fixedUUIDGenerator{})

	ctx := context.Background()
	period := domain.Period{Year: 2024, Quarter: 1}
	ext.On("Extract", ctx, "NVDA", period).Return(testExtractionResult("NVDA", period), nil)
	transcripts.On("Upsert", ctx, mock.MatchedBy(func(tr *domain.Transcript) bool {
		return tr.Ticker == "NVDA" && tr.Year == 2024 && tr.Quarter == 1 && tr.Source == domain.TranscriptSourceSample
	})).Return(nil)
	jobs.On("Create", ctx, mock.MatchedBy(func(job *domain.EmbeddingJob) bool {
		return job.TranscriptID == "uuid-1" && job.Status == domain.EmbeddingJobStatusPending
	})).Return(nil)

	transcript, err := svc.ExtractAndStore(ctx, "NVDA", period)

	require.NoError(t, err)
	assert.Equal(t, "uuid-1", transcript.ID)
	assert.Equal(t, "NVDA", transcript.Ticker)
	transcripts.AssertExpectations(t)
	jobs.AssertExpectations(t)
}

func TestExtractionService_ExtractAndStore_ExtractionFailure(t *testing.T) {
	ext := new(MockExtractor)
	runner := &fakeTxRunner{transcripts: new(MockTranscriptRepository), jobs: new(MockEmbeddingJobRepository)}
	svc := NewExtractionService(ext, runner)

	ctx := context.Background()
	period := domain.Period{Year: 2024, Quarter: 1}
	ext.On("Extract", ctx, "NVDA", period).Return(nil, domain.ErrExtractionFailed)

	_, err := svc.ExtractAndStore(ctx, "NVDA", period)

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractionService_ExtractAndStore_TxFailure(t *testing.T) {
	ext := new(MockExtractor)
	runner := &fakeTxRunner{
		transcripts: new(MockTranscriptRepository),
		jobs:        new(MockEmbeddingJobRepository),
		err:         errors.New("deadlock detected"),
	}
	svc := NewExtractionService(ext, runner)

	ctx := context.Background()
	period := domain.Period{Year: 2024, Quarter: 1}
	ext.On("Extract", ctx, "NVDA", period).Return(testExtractionResult("NVDA", period), nil)

	_, err := svc.ExtractAndStore(ctx, "NVDA", period)

	assert.EqualError(t, err, "deadlock detected")
}

func TestExtractionService_ExtractBatch(t *testing.T) {
	ext := new(MockExtractor)
	transcripts := new(MockTranscriptRepository)
	jobs := new(MockEmbeddingJobRepository)
	runner := &fakeTxRunner{transcripts: transcripts, jobs: jobs}
	svc := NewExtractionServiceWithUUIDGen(ext, runner, &fixedUUIDGenerator{})

	ctx := context.Background()
	periods := []domain.Period{{Year: 2024, Quarter: 1}, {Year: 2024, Quarter: 2}}

	ext.On("Extract", ctx, "NVDA", periods[0]).Return(testExtractionResult("NVDA", periods[0]), nil)
	ext.On("Extract", ctx, "NVDA", periods[1]).Return(testExtractionResult("NVDA", periods[1]), nil)
	ext.On("Extract", ctx, "MSFT", periods[0]).Return(nil, domain.ErrExtractionFailed)
	ext.On("Extract", ctx, "MSFT", periods[1]).Return(testExtractionResult("MSFT", periods[1]), nil)
	transcripts.On("Upsert", ctx, mock.Anything).Return(nil)
	jobs.On("Create", ctx, mock.Anything).Return(nil)

	var progress []BatchOutcome
	summary, err := svc.ExtractBatch(ctx, []string{"NVDA", "MSFT"}, periods, func(o BatchOutcome) {
		progress = append(progress, o)
	})

	require.NoError(t, err)
	assert.Equal(t, 4, summary.Requested)
	assert.Equal(t, 3, summary.Stored)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, progress, 4)
	assert.Error(t, summary.Outcomes[2].Err)
}

func TestExtractionService_ExtractBatch_ContextCancelled(t *testing.T) {
	ext := new(MockExtractor)
	runner := &fakeTxRunner{transcripts: new(MockTranscriptRepository), jobs: new(MockEmbeddingJobRepository)}
	svc := NewExtractionService(ext, runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.ExtractBatch(ctx, []string{"NVDA"}, []domain.Period{{Year: 2024, Quarter: 1}}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Stored)
}
