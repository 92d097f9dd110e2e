package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTranscript() *Transcript {
	return &Transcript{
		ID:        "2f0c6a1e-8f14-4a71-9f44-3f0b8f9f3f61",
		Ticker:    "NVDA",
		Year:      2024,
		Quarter:   3,
		Source:    TranscriptSourceSEC,
		CallDate:  time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC),
		Content:   "Earnings call transcript content.",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestValidateTranscript(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateTranscript(validTranscript()))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Error(t, ValidateTranscript(nil))
	})

	t.Run("missing ID", func(t *testing.T) {
		tr := validTranscript()
		tr.ID = ""
		assert.Error(t, ValidateTranscript(tr))
	})

	t.Run("untracked ticker", func(t *testing.T) {
		tr := validTranscript()
		tr.Ticker = "AAPL"
		assert.Error(t, ValidateTranscript(tr))
	})

	t.Run("period out of coverage", func(t *testing.T) {
		tr := validTranscript()
		tr.Year = 2019
		assert.Error(t, ValidateTranscript(tr))
	})

	t.Run("empty content", func(t *testing.T) {
		tr := validTranscript()
		tr.Content = ""
		assert.Error(t, ValidateTranscript(tr))
	})

	t.Run("unknown source", func(t *testing.T) {
		tr := validTranscript()
		tr.Source = "reddit"
		assert.Error(t, ValidateTranscript(tr))
	})
}

func TestTranscriptPeriod(t *testing.T) {
	tr := validTranscript()
	assert.Equal(t, Period{Year: 2024, Quarter: 3}, tr.Period())
}

func TestValidateEmbeddingJob(t *testing.T) {
	now := time.Now()

	t.Run("valid pending job", func(t *testing.T) {
		j := NewEmbeddingJob("job-1", "tr-1", now)
		assert.NoError(t, ValidateEmbeddingJob(j))
		assert.Equal(t, EmbeddingJobStatusPending, j.Status)
		assert.Nil(t, j.ProcessedAt)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Error(t, ValidateEmbeddingJob(nil))
	})

	t.Run("missing transcript id", func(t *testing.T) {
		j := NewEmbeddingJob("job-1", "", now)
		assert.Error(t, ValidateEmbeddingJob(j))
	})

	t.Run("bad status", func(t *testing.T) {
		j := NewEmbeddingJob("job-1", "tr-1", now)
		j.Status = "stuck"
		assert.Error(t, ValidateEmbeddingJob(j))
	})

	t.Run("negative retries", func(t *testing.T) {
		j := NewEmbeddingJob("job-1", "tr-1", now)
		j.Retries = -1
		assert.Error(t, ValidateEmbeddingJob(j))
	})
}
