package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/domain"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusOK, map[string]string{"ticker": "NVDA"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{"ticker": "NVDA"}, resp.Data)
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bad input", resp.Error)
}

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", domain.ErrEmptyQuestion, http.StatusBadRequest},
		{"not found", domain.ErrTranscriptNotFound, http.StatusNotFound},
		{"unauthorized", domain.ErrInvalidAPIKey, http.StatusUnauthorized},
		{"unavailable", domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{"internal", domain.ErrExtractionFailed, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("search: %w", domain.ErrCompanyNotFound), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainErrorToHTTP(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, domain.ErrTranscriptNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "transcript not found")
}
