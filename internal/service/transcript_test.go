package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/pagination"
)

// MockChunkResetRepository is a mock implementation of ChunkResetRepository
type MockChunkResetRepository struct {
	mock.Mock
}

func (m *MockChunkResetRepository) DeleteByFilters(ctx context.Context, filters SearchFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func TestTranscriptService_GetByID(t *testing.T) {
	repo := new(MockTranscriptRepository)
	svc := NewTranscriptService(repo, new(MockChunkResetRepository))

	ctx := context.Background()
	transcript := testTranscript("quarterly results discussion")
	repo.On("GetByID", ctx, "t1").Return(transcript, nil)

	got, err := svc.GetByID(ctx, "t1")

	require.NoError(t, err)
	assert.Equal(t, transcript, got)
}

func TestTranscriptService_GetByID_NotFound(t *testing.T) {
	repo := new(MockTranscriptRepository)
	svc := NewTranscriptService(repo, new(MockChunkResetRepository))

	ctx := context.Background()
	repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrTranscriptNotFound)

	_, err := svc.GetByID(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
}

func TestTranscriptService_GetByPeriod_InvalidTicker(t *testing.T) {
	svc := NewTranscriptService(new(MockTranscriptRepository), new(MockChunkResetRepository))

	_, err := svc.GetByPeriod(context.Background(), "AAPL", domain.Period{Year: 2024, Quarter: 1})

	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestTranscriptService_List(t *testing.T) {
	repo := new(MockTranscriptRepository)
	svc := NewTranscriptService(repo, new(MockChunkResetRepository))

	ctx := context.Background()
	page := &TranscriptPageResult{
		Items:      []*domain.Transcript{testTranscript("one"), testTranscript("two")},
		NextCursor: pagination.EncodeCursor("t2", time.Now().UTC()),
		HasMore:    true,
	}
	repo.On("ListWithCursor", ctx, SearchFilters{Ticker: "NVDA"}, (*pagination.Cursor)(nil), 20).Return(page, nil)

	out, err := svc.List(ctx, ListTranscriptsInput{Ticker: "NVDA", Limit: 20})

	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.True(t, out.HasMore)
	assert.Equal(t, page.NextCursor, out.Cursor)
}

func TestTranscriptService_List_WithCursor(t *testing.T) {
	repo := new(MockTranscriptRepository)
	svc := NewTranscriptService(repo, new(MockChunkResetRepository))

	ctx := context.Background()
	cursor := pagination.EncodeCursor("t5", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	repo.On("ListWithCursor", ctx, SearchFilters{}, mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "t5"
	}), 10).Return(&TranscriptPageResult{}, nil)

	_, err := svc.List(ctx, ListTranscriptsInput{Cursor: cursor, Limit: 10})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTranscriptService_List_InvalidCursor(t *testing.T) {
	svc := NewTranscriptService(new(MockTranscriptRepository), new(MockChunkResetRepository))

	_, err := svc.List(context.Background(), ListTranscriptsInput{Cursor: "not-base64!!!"})

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestTranscriptService_List_InvalidTickerFilter(t *testing.T) {
	svc := NewTranscriptService(new(MockTranscriptRepository), new(MockChunkResetRepository))

	_, err := svc.List(context.Background(), ListTranscriptsInput{Ticker: "NOPE"})

	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestTranscriptService_List_PeriodFilters(t *testing.T) {
	repo := new(MockTranscriptRepository)
	svc := NewTranscriptService(repo, new(MockChunkResetRepository))

	ctx := context.Background()
	repo.On("ListWithCursor", ctx, SearchFilters{Ticker: "NVDA", Year: 2024, Quarter: 2}, (*pagination.Cursor)(nil), 0).
		Return(&TranscriptPageResult{}, nil)

	_, err := svc.List(ctx, ListTranscriptsInput{Ticker: "NVDA", Year: 2024, Quarter: 2})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTranscriptService_List_InvalidQuarter(t *testing.T) {
	svc := NewTranscriptService(new(MockTranscriptRepository), new(MockChunkResetRepository))

	_, err := svc.List(context.Background(), ListTranscriptsInput{Quarter: 5})

	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestTranscriptService_Reset(t *testing.T) {
	repo := new(MockTranscriptRepository)
	chunks := new(MockChunkResetRepository)
	svc := NewTranscriptService(repo, chunks)

	ctx := context.Background()
	filters := SearchFilters{Ticker: "NVDA", Year: 2024}
	chunks.On("DeleteByFilters", ctx, filters).Return(int64(12), nil)
	repo.On("DeleteByFilters", ctx, filters).Return(int64(4), nil)

	out, err := svc.Reset(ctx, ResetInput{Ticker: "NVDA", Year: 2024})

	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Transcripts)
	assert.Equal(t, int64(12), out.Chunks)
	chunks.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestTranscriptService_Reset_InvalidTicker(t *testing.T) {
	repo := new(MockTranscriptRepository)
	chunks := new(MockChunkResetRepository)
	svc := NewTranscriptService(repo, chunks)

	_, err := svc.Reset(context.Background(), ResetInput{Ticker: "AAPL"})

	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
	chunks.AssertNotCalled(t, "DeleteByFilters", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteByFilters", mock.Anything, mock.Anything)
}

func TestTranscriptService_Delete(t *testing.T) {
	repo := new(MockTranscriptRepository)
	svc := NewTranscriptService(repo, new(MockChunkResetRepository))

	ctx := context.Background()
	repo.On("Delete", ctx, "t1").Return(nil)

	err := svc.Delete(ctx, "t1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
