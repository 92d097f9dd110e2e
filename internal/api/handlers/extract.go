package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/service"
)

type ExtractionService interface {
	ExtractAndStore(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error)
	ExtractBatch(ctx context.Context, tickers []string, periods []domain.Period, onProgress func(service.BatchOutcome)) (*service.BatchSummary, error)
}

type ExtractHandler struct {
	svc ExtractionService
}

func NewExtractHandler(svc ExtractionService) *ExtractHandler {
	return &ExtractHandler{svc: svc}
}

type ExtractRequest struct {
	Ticker  string `json:"ticker"`
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
}

type ExtractBatchRequest struct {
	Tickers  []string `json:"tickers"`
	Years    []int    `json:"years"`
	Quarters []int    `json:"quarters"`
}

type BatchOutcomeResponse struct {
	Ticker       string `json:"ticker"`
	Year         int    `json:"year"`
	Quarter      int    `json:"quarter"`
	TranscriptID string `json:"transcript_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

type ExtractBatchResponse struct {
	Requested int                    `json:"requested"`
	Stored    int                    `json:"stored"`
	Failed    int                    `json:"failed"`
	Outcomes  []BatchOutcomeResponse `json:"outcomes"`
}

// Extract handles POST /v1/extract
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Ticker == "" {
		api.Error(w, http.StatusBadRequest, "ticker is required")
		return
	}

	period := domain.Period{Year: req.Year, Quarter: req.Quarter}
	if err := period.Validate(); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	transcript, err := h.svc.ExtractAndStore(r.Context(), req.Ticker, period)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, transcriptToResponse(transcript, false))
}

// ExtractBatch handles POST /v1/extract/batch. Empty tickers means every
// tracked company; empty years/quarters mean the full coverage window.
func (h *ExtractHandler) ExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req ExtractBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = domain.AllTickers()
	}
	for _, ticker := range tickers {
		if !domain.IsValidTicker(ticker) {
			api.Error(w, http.StatusBadRequest, "unknown ticker: "+ticker)
			return
		}
	}

	periods, err := buildPeriods(req.Years, req.Quarters)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.svc.ExtractBatch(r.Context(), tickers, periods, nil)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ExtractBatchResponse{
		Requested: summary.Requested,
		Stored:    summary.Stored,
		Failed:    summary.Failed,
		Outcomes:  make([]BatchOutcomeResponse, len(summary.Outcomes)),
	}
	for i, outcome := range summary.Outcomes {
		o := BatchOutcomeResponse{
			Ticker:  outcome.Ticker,
			Year:    outcome.Period.Year,
			Quarter: outcome.Period.Quarter,
		}
		if outcome.Transcript != nil {
			o.TranscriptID = outcome.Transcript.ID
		}
		if outcome.Err != nil {
			o.Error = outcome.Err.Error()
		}
		resp.Outcomes[i] = o
	}

	api.Success(w, http.StatusOK, resp)
}

func buildPeriods(years, quarters []int) ([]domain.Period, error) {
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
				return nil, err
			}
			periods = append(periods, period)
		}
	}
	return periods, nil
}
