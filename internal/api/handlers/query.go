package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/service"
)

type RAGService interface {
	Ask(ctx context.Context, input service.AskInput) (*service.AskOutput, error)
	Search(ctx context.Context, input service.SearchInput) ([]*service.ChunkMatch, error)
}

type QueryHandler struct {
	svc RAGService
}

func NewQueryHandler(svc RAGService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryFilters struct {
	Ticker  string `json:"ticker,omitempty"`
	Year    int    `json:"year,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
}

type AskRequest struct {
	Question string        `json:"question"`
	Filters  *QueryFilters `json:"filters,omitempty"`
	TopK     int           `json:"top_k,omitempty"`
}

type AskResponse struct {
	Answer     string                 `json:"answer"`
	Confidence float64                `json:"confidence"`
	Sources    []service.AnswerSource `json:"sources"`
}

type SearchRequest struct {
	Query   string        `json:"query"`
	Filters *QueryFilters `json:"filters,omitempty"`
	Limit   int           `json:"limit,omitempty"`
}

type SearchResultResponse struct {
	TranscriptID string  `json:"transcript_id"`
	Ticker       string  `json:"ticker"`
	Year         int     `json:"year"`
	Quarter      int     `json:"quarter"`
	ChunkIndex   int     `json:"chunk_index"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}

func toSearchFilters(f *QueryFilters) service.SearchFilters {
	if f == nil {
		return service.SearchFilters{}
	}
	return service.SearchFilters{
		Ticker:  f.Ticker,
		Year:    f.Year,
		Quarter: f.Quarter,
	}
}

// Ask handles POST /v1/ask
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	out, err := h.svc.Ask(r.Context(), service.AskInput{
		Question: req.Question,
		Filters:  toSearchFilters(req.Filters),
		TopK:     req.TopK,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer:     out.Answer,
		Confidence: out.Confidence,
		Sources:    out.Sources,
	})
}

// Search handles POST /v1/search
func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	matches, err := h.svc.Search(r.Context(), service.SearchInput{
		Query:   req.Query,
		Filters: toSearchFilters(req.Filters),
		Limit:   req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]SearchResultResponse, len(matches))
	for i, m := range matches {
		results[i] = SearchResultResponse{
			TranscriptID: m.TranscriptID,
			Ticker:       m.Ticker,
			Year:         m.Year,
			Quarter:      m.Quarter,
			ChunkIndex:   m.ChunkIndex,
			Content:      m.Content,
			Score:        m.Score,
		}
	}

	api.Success(w, http.StatusOK, results)
}
