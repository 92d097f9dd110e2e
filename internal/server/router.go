package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/api/handlers"
	"github.com/finsight-ai/finsight/internal/api/middleware"
)

type RouterConfig struct {
	APIKey            string
	CompanyHandler    *handlers.CompanyHandler
	ExtractHandler    *handlers.ExtractHandler
	TranscriptHandler *handlers.TranscriptHandler
	QueryHandler      *handlers.QueryHandler
	StatsHandler      *handlers.StatsHandler
	JobsHandler       *handlers.JobsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))

		r.Get("/companies", cfg.CompanyHandler.List)

		r.Post("/extract", cfg.ExtractHandler.Extract)
		r.Post("/extract/batch", cfg.ExtractHandler.ExtractBatch)

		r.Route("/transcripts", func(r chi.Router) {
			r.Get("/", cfg.TranscriptHandler.List)
			r.Delete("/", cfg.TranscriptHandler.Reset)
			r.Get("/{id}", cfg.TranscriptHandler.Get)
			r.Get("/{ticker}/{year}/{quarter}", cfg.TranscriptHandler.GetByPeriod)
			r.Delete("/{id}", cfg.TranscriptHandler.Delete)
		})

		r.Post("/ask", cfg.QueryHandler.Ask)
		r.Post("/search", cfg.QueryHandler.Search)

		r.Get("/stats", cfg.StatsHandler.Get)

		if cfg.JobsHandler != nil {
			r.Get("/jobs", cfg.JobsHandler.List)
			r.Post("/jobs/{name}/run", cfg.JobsHandler.Run)
		}
	})

	return r
}
