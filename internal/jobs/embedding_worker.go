package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/finsight-ai/finsight/internal/domain"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3
)

// EmbeddingJobRepository defines the interface for embedding job persistence
type EmbeddingJobRepository interface {
	// GetPendingJobs retrieves and claims pending embedding jobs
	GetPendingJobs(ctx context.Context) ([]*domain.EmbeddingJob, error)

	// UpdateJobStatus updates the status of an embedding job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.EmbeddingJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// EmbeddingService defines the interface for generating transcript embeddings
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, transcriptID string) error
}

// EmbeddingWorker processes embedding jobs
type EmbeddingWorker struct {
	repo    EmbeddingJobRepository
	service EmbeddingService
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(repo EmbeddingJobRepository, service EmbeddingService) *EmbeddingWorker {
	return &EmbeddingWorker{
		repo:    repo,
		service: service,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending embedding jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	if job.TranscriptID == "" {
		return fmt.Errorf("job %s has no transcript_id", job.ID)
	}

	log.Printf("Processing job %s for transcript %s", job.ID, job.TranscriptID)
	if err := w.service.GenerateEmbedding(ctx, job.TranscriptID); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *EmbeddingWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	// Reset to pending for retry
	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
