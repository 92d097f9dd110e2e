package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/api/handlers"
	"github.com/finsight-ai/finsight/internal/service"
)

type MockRAGService struct {
	mock.Mock
}

func (m *MockRAGService) Ask(ctx context.Context, input service.AskInput) (*service.AskOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AskOutput), args.Error(1)
}

func (m *MockRAGService) Search(ctx context.Context, input service.SearchInput) ([]*service.ChunkMatch, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.ChunkMatch), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Collect(ctx context.Context) (*service.CollectionStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CollectionStats), args.Error(1)
}

func newTestRouter(apiKey string, rag *MockRAGService, stats *MockStatsService) http.Handler {
	return NewRouter(RouterConfig{
		APIKey:            apiKey,
		CompanyHandler:    handlers.NewCompanyHandler(),
		ExtractHandler:    handlers.NewExtractHandler(nil),
		TranscriptHandler: handlers.NewTranscriptHandler(nil),
		QueryHandler:      handlers.NewQueryHandler(rag),
		StatsHandler:      handlers.NewStatsHandler(stats),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter("", new(MockRAGService), new(MockStatsService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CompaniesWithoutAuthConfigured(t *testing.T) {
	router := newTestRouter("", new(MockRAGService), new(MockStatsService))

	req := httptest.NewRequest(http.MethodGet, "/v1/companies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []handlers.CompanyResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 18)
}

func TestRouter_AuthRequired(t *testing.T) {
	router := newTestRouter("secret", new(MockRAGService), new(MockStatsService))

	req := httptest.NewRequest(http.MethodGet, "/v1/companies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthAccepted(t *testing.T) {
	router := newTestRouter("secret", new(MockRAGService), new(MockStatsService))

	req := httptest.NewRequest(http.MethodGet, "/v1/companies", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HealthSkipsAuth(t *testing.T) {
	router := newTestRouter("secret", new(MockRAGService), new(MockStatsService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_JobsRoutesAbsentWithoutScheduler(t *testing.T) {
	router := newTestRouter("", new(MockRAGService), new(MockStatsService))

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Stats(t *testing.T) {
	stats := new(MockStatsService)
	stats.On("Collect", mock.Anything).Return(&service.CollectionStats{Transcripts: 5}, nil)
	router := newTestRouter("", new(MockRAGService), stats)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"transcripts\":5")
}
