package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/jobs"
)

type JobScheduler interface {
	List() []jobs.ScheduledJob
	RunNow(name string) error
}

type JobsHandler struct {
	scheduler JobScheduler
}

func NewJobsHandler(scheduler JobScheduler) *JobsHandler {
	return &JobsHandler{scheduler: scheduler}
}

// List handles GET /v1/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.scheduler.List())
}

// Run handles POST /v1/jobs/{name}/run
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.scheduler.RunNow(name); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusAccepted, map[string]string{"status": "triggered", "job": name})
}
