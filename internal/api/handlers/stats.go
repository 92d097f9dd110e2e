package handlers

import (
	"context"
	"net/http"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/service"
)

type StatsService interface {
	Collect(ctx context.Context) (*service.CollectionStats, error)
}

type StatsHandler struct {
	svc StatsService
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Get handles GET /v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Collect(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}
