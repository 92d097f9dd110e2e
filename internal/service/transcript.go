package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/pagination"
	"github.com/finsight-ai/finsight/internal/telemetry"
)

// TranscriptRepositoryInterface defines the repository interface for transcript persistence
type TranscriptRepositoryInterface interface {
	Upsert(ctx context.Context, t *domain.Transcript) error
	GetByID(ctx context.Context, id string) (*domain.Transcript, error)
	GetByPeriod(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error)
	ListWithCursor(ctx context.Context, filters SearchFilters, cursor *pagination.Cursor, limit int) (*TranscriptPageResult, error)
	Delete(ctx context.Context, id string) error
	DeleteByFilters(ctx context.Context, filters SearchFilters) (int64, error)
}

// ChunkResetRepository bulk-deletes chunk rows during corpus resets.
type ChunkResetRepository interface {
	DeleteByFilters(ctx context.Context, filters SearchFilters) (int64, error)
}

// EmbeddingJobRepositoryInterface defines the repository interface for embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

type TranscriptPageResult struct {
	Items      []*domain.Transcript
	NextCursor string
	HasMore    bool
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// TranscriptService handles read and delete operations on stored transcripts.
// Writes go through the ExtractionService so every stored transcript has a
// raw payload and an embedding job behind it.
type TranscriptService struct {
	repo   TranscriptRepositoryInterface
	chunks ChunkResetRepository
}

func NewTranscriptService(repo TranscriptRepositoryInterface, chunks ChunkResetRepository) *TranscriptService {
	return &TranscriptService{repo: repo, chunks: chunks}
}

func (s *TranscriptService) GetByID(ctx context.Context, id string) (*domain.Transcript, error) {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.GetByID", telemetry.SpanAttributes{
		TranscriptID: id,
		Operation:    "get",
	})
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

func (s *TranscriptService) GetByPeriod(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error) {
	if !domain.IsValidTicker(ticker) {
		return nil, domain.ErrCompanyNotFound
	}
	return s.repo.GetByPeriod(ctx, ticker, period)
}

type ListTranscriptsInput struct {
	Ticker  string
	Year    int
	Quarter int
	Cursor  string
	Limit   int
}

type ListTranscriptsOutput struct {
	Items   []*domain.Transcript
	Cursor  string
	HasMore bool
}

func (s *TranscriptService) List(ctx context.Context, input ListTranscriptsInput) (*ListTranscriptsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.List", telemetry.SpanAttributes{
		Ticker:    input.Ticker,
		Operation: "list",
	})
	defer span.End()

	filters := SearchFilters{Ticker: input.Ticker, Year: input.Year, Quarter: input.Quarter}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.repo.ListWithCursor(ctx, filters, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListTranscriptsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

type ResetInput struct {
	Ticker  string
	Year    int
	Quarter int
}

type ResetOutput struct {
	Transcripts int64
	Chunks      int64
}

// Reset bulk-deletes transcripts and their chunks, optionally narrowed to a
// company or period. Empty filters wipe the whole corpus.
func (s *TranscriptService) Reset(ctx context.Context, input ResetInput) (*ResetOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.Reset", telemetry.SpanAttributes{
		Ticker:    input.Ticker,
		Operation: "reset",
	})
	defer span.End()

	filters := SearchFilters{Ticker: input.Ticker, Year: input.Year, Quarter: input.Quarter}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	// Chunks go first so the count reflects rows deleted directly rather
	// than by cascade.
	chunks, err := s.chunks.DeleteByFilters(ctx, filters)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	transcripts, err := s.repo.DeleteByFilters(ctx, filters)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ResetOutput{Transcripts: transcripts, Chunks: chunks}, nil
}

// Delete removes a transcript. Chunks and jobs cascade at the database level.
func (s *TranscriptService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.Delete", telemetry.SpanAttributes{
		TranscriptID: id,
		Operation:    "delete",
	})
	defer span.End()

	return s.repo.Delete(ctx, id)
}
