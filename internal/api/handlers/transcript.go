package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/service"
)

type TranscriptService interface {
	GetByID(ctx context.Context, id string) (*domain.Transcript, error)
	GetByPeriod(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error)
	List(ctx context.Context, input service.ListTranscriptsInput) (*service.ListTranscriptsOutput, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, input service.ResetInput) (*service.ResetOutput, error)
}

type TranscriptHandler struct {
	svc TranscriptService
}

func NewTranscriptHandler(svc TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

type TranscriptResponse struct {
	ID       string `json:"id"`
	Ticker   string `json:"ticker"`
	Year     int    `json:"year"`
	Quarter  int    `json:"quarter"`
	Source   string `json:"source"`
	CallDate string `json:"call_date"`
	Content  string `json:"content,omitempty"`
	Chars    int    `json:"chars"`
}

type TranscriptListResponse struct {
	Items   []*TranscriptResponse `json:"items"`
	Cursor  string                `json:"cursor,omitempty"`
	HasMore bool                  `json:"has_more"`
}

func transcriptToResponse(t *domain.Transcript, includeContent bool) *TranscriptResponse {
	resp := &TranscriptResponse{
		ID:       t.ID,
		Ticker:   t.Ticker,
		Year:     t.Year,
		Quarter:  t.Quarter,
		Source:   string(t.Source),
		CallDate: t.CallDate.Format("2006-01-02"),
		Chars:    len(t.Content),
	}
	if includeContent {
		resp.Content = t.Content
	}
	return resp
}

// queryInt parses an optional integer query parameter, reporting whether it
// was present and valid.
func queryInt(r *http.Request, name string) (int, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// List handles GET /v1/transcripts. Listings omit the transcript body; fetch
// a single transcript for the full text.
func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	input := service.ListTranscriptsInput{
		Ticker: r.URL.Query().Get("ticker"),
		Cursor: r.URL.Query().Get("cursor"),
	}

	year, _, err := queryInt(r, "year")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	input.Year = year

	quarter, _, err := queryInt(r, "quarter")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "quarter must be an integer")
		return
	}
	input.Quarter = quarter

	if limit, ok, err := queryInt(r, "limit"); err != nil || (ok && limit < 1) {
		api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	} else if ok {
		input.Limit = limit
	}

	out, err := h.svc.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*TranscriptResponse, len(out.Items))
	for i, t := range out.Items {
		items[i] = transcriptToResponse(t, false)
	}

	api.Success(w, http.StatusOK, TranscriptListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

// Get handles GET /v1/transcripts/{id}
func (h *TranscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "transcript id is required")
		return
	}

	transcript, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, transcriptToResponse(transcript, true))
}

// GetByPeriod handles GET /v1/transcripts/{ticker}/{year}/{quarter}
func (h *TranscriptHandler) GetByPeriod(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	quarter, err := strconv.Atoi(chi.URLParam(r, "quarter"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "quarter must be an integer")
		return
	}

	period := domain.Period{Year: year, Quarter: quarter}
	if err := period.Validate(); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	transcript, err := h.svc.GetByPeriod(r.Context(), ticker, period)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, transcriptToResponse(transcript, true))
}

type ResetResponse struct {
	DeletedTranscripts int64 `json:"deleted_transcripts"`
	DeletedChunks      int64 `json:"deleted_chunks"`
}

// Reset handles DELETE /v1/transcripts. Query filters narrow the wipe to a
// company or period; with no filters the whole corpus is cleared.
func (h *TranscriptHandler) Reset(w http.ResponseWriter, r *http.Request) {
	input := service.ResetInput{Ticker: r.URL.Query().Get("ticker")}

	year, _, err := queryInt(r, "year")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	input.Year = year

	quarter, _, err := queryInt(r, "quarter")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "quarter must be an integer")
		return
	}
	input.Quarter = quarter

	out, err := h.svc.Reset(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ResetResponse{
		DeletedTranscripts: out.Transcripts,
		DeletedChunks:      out.Chunks,
	})
}

// Delete handles DELETE /v1/transcripts/{id}
func (h *TranscriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "transcript id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
