package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/service"
)

// MockRAGService is a mock implementation of RAGService
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

func newQueryRouter(svc RAGService) chi.Router {
	h := NewQueryHandler(svc)
	r := chi.NewRouter()
	r.Post("/v1/ask", h.Ask)
	r.Post("/v1/search", h.Search)
	return r
}

func TestQueryHandler_Ask(t *testing.T) {
	svc := new(MockRAGService)
	svc.On("Ask", mock.Anything, service.AskInput{
		Question: "How did NVDA do?",
		Filters:  service.SearchFilters{Ticker: "NVDA"},
	}).Return(&service.AskOutput{
		Answer:     "Revenue grew.",
		Confidence: 0.9,
		Sources:    []service.AnswerSource{{Ticker: "NVDA", Year: 2024, Quarter: 2, Score: 0.88}},
	}, nil)

	body := `{"question":"How did NVDA do?","filters":{"ticker":"NVDA"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(body))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data AskResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Revenue grew.", resp.Data.Answer)
	assert.Equal(t, 0.9, resp.Data.Confidence)
	require.Len(t, resp.Data.Sources, 1)
}

func TestQueryHandler_Ask_TopK(t *testing.T) {
	svc := new(MockRAGService)
	svc.On("Ask", mock.Anything, service.AskInput{
		Question: "Summarize the quarter",
		TopK:     2,
	}).Return(&service.AskOutput{Answer: "Summary."}, nil)

	body := `{"question":"Summarize the quarter","top_k":2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(body))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestQueryHandler_Ask_MissingQuestion(t *testing.T) {
	svc := new(MockRAGService)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestQueryHandler_Ask_LLMUnavailable(t *testing.T) {
	svc := new(MockRAGService)
	svc.On("Ask", mock.Anything, mock.Anything).Return(nil, domain.ErrLLMUnavailable)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"anything"}`))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueryHandler_Search(t *testing.T) {
	svc := new(MockRAGService)
	svc.On("Search", mock.Anything, service.SearchInput{Query: "data center", Limit: 3}).Return([]*service.ChunkMatch{
		{TranscriptID: "t1", Ticker: "NVDA", Year: 2024, Quarter: 2, Content: "Data center revenue grew.", Score: 0.9},
	}, nil)

	body := `{"query":"data center","limit":3}`
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []SearchResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "NVDA", resp.Data[0].Ticker)
	assert.Equal(t, 0.9, resp.Data[0].Score)
}

func TestQueryHandler_Search_MissingQuery(t *testing.T) {
	svc := new(MockRAGService)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestQueryHandler_Search_InvalidBody(t *testing.T) {
	svc := new(MockRAGService)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	newQueryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
