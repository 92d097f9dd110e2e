package domain

import (
	"fmt"
	"time"
)

// EmbeddingJobStatus represents the status of an embedding job
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

// EmbeddingJob represents an async embedding generation job for a transcript
type EmbeddingJob struct {
	ID           string
	TranscriptID string
	Status       EmbeddingJobStatus
	Retries      int32
	Error        string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// NewEmbeddingJob creates a pending EmbeddingJob for a transcript
func NewEmbeddingJob(id, transcriptID string, createdAt time.Time) *EmbeddingJob {
	return &EmbeddingJob{
		ID:           id,
		TranscriptID: transcriptID,
		Status:       EmbeddingJobStatusPending,
		Retries:      0,
		Error:        "",
		CreatedAt:    createdAt,
		ProcessedAt:  nil,
	}
}

// ValidateEmbeddingJob validates an EmbeddingJob instance
func ValidateEmbeddingJob(j *EmbeddingJob) error {
	if j == nil {
		return fmt.Errorf("embedding job cannot be nil")
	}
	if j.ID == "" {
		return fmt.Errorf("embedding job ID is required")
	}
	if j.TranscriptID == "" {
		return fmt.Errorf("embedding job TranscriptID is required")
	}
	if !isValidEmbeddingJobStatus(j.Status) {
		return fmt.Errorf("embedding job Status is invalid: %s", j.Status)
	}
	if j.Retries < 0 {
		return fmt.Errorf("embedding job Retries cannot be negative")
	}
	return nil
}

func isValidEmbeddingJobStatus(s EmbeddingJobStatus) bool {
	switch s {
	case EmbeddingJobStatusPending, EmbeddingJobStatusProcessing,
		EmbeddingJobStatusCompleted, EmbeddingJobStatusFailed:
		return true
	}
	return false
}
