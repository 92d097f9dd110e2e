package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/jobs"
)

// MockJobScheduler is a mock implementation of JobScheduler
type MockJobScheduler struct {
	mock.Mock
}

func (m *MockJobScheduler) List() []jobs.ScheduledJob {
	args := m.Called()
	return args.Get(0).([]jobs.ScheduledJob)
}

func (m *MockJobScheduler) RunNow(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func newJobsRouter(scheduler JobScheduler) chi.Router {
	h := NewJobsHandler(scheduler)
	r := chi.NewRouter()
	r.Get("/v1/jobs", h.List)
	r.Post("/v1/jobs/{name}/run", h.Run)
	return r
}

func TestJobsHandler_List(t *testing.T) {
	scheduler := new(MockJobScheduler)
	scheduler.On("List").Return([]jobs.ScheduledJob{
		{Name: "daily-extraction", Schedule: "0 9 * * *"},
		{Name: "health-check", Schedule: "0 */6 * * *"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	w := httptest.NewRecorder()
	newJobsRouter(scheduler).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []jobs.ScheduledJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestJobsHandler_Run(t *testing.T) {
	scheduler := new(MockJobScheduler)
	scheduler.On("RunNow", "weekly-sync").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/weekly-sync/run", nil)
	w := httptest.NewRecorder()
	newJobsRouter(scheduler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	scheduler.AssertExpectations(t)
}

func TestJobsHandler_Run_UnknownJob(t *testing.T) {
	scheduler := new(MockJobScheduler)
	scheduler.On("RunNow", "nope").Return(domain.ErrJobNotFound)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/nope/run", nil)
	w := httptest.NewRecorder()
	newJobsRouter(scheduler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
