package service

import (
	"context"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/telemetry"
)

// StatsTranscriptRepository exposes the transcript counters behind stats.
type StatsTranscriptRepository interface {
	Count(ctx context.Context) (int64, error)
	CountByTicker(ctx context.Context) (map[string]int64, error)
	CountBySource(ctx context.Context) (map[string]int64, error)
	LatestUpdate(ctx context.Context) (time.Time, error)
}

// StatsChunkRepository exposes the chunk counter behind stats.
type StatsChunkRepository interface {
	Count(ctx context.Context) (int64, error)
}

// StatsJobRepository exposes embedding job counters behind stats.
type StatsJobRepository interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// CollectionStats summarizes the embedded corpus.
type CollectionStats struct {
	Transcripts      int64            `json:"transcripts"`
	Chunks           int64            `json:"chunks"`
	ByTicker         map[string]int64 `json:"by_ticker"`
	BySource         map[string]int64 `json:"by_source"`
	JobsByStatus     map[string]int64 `json:"jobs_by_status"`
	TrackedCompanies int              `json:"tracked_companies"`
	CoveredCompanies int              `json:"covered_companies"`
	LastUpdate       *time.Time       `json:"last_update,omitempty"`
}

// StatsService aggregates corpus counters for the stats endpoint.
type StatsService struct {
	transcripts StatsTranscriptRepository
	chunks      StatsChunkRepository
	jobs        StatsJobRepository
}

func NewStatsService(transcripts StatsTranscriptRepository, chunks StatsChunkRepository, jobs StatsJobRepository) *StatsService {
	return &StatsService{
		transcripts: transcripts,
		chunks:      chunks,
		jobs:        jobs,
	}
}

func (s *StatsService) Collect(ctx context.Context) (*CollectionStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "StatsService.Collect", telemetry.SpanAttributes{
		Operation: "stats",
	})
	defer span.End()

	stats := &CollectionStats{
		TrackedCompanies: len(domain.AllCompanies()),
	}

	var err error
	if stats.Transcripts, err = s.transcripts.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Chunks, err = s.chunks.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ByTicker, err = s.transcripts.CountByTicker(ctx); err != nil {
		return nil, err
	}
	if stats.BySource, err = s.transcripts.CountBySource(ctx); err != nil {
		return nil, err
	}
	if stats.JobsByStatus, err = s.jobs.CountByStatus(ctx); err != nil {
		return nil, err
	}
	stats.CoveredCompanies = len(stats.ByTicker)

	latest, err := s.transcripts.LatestUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if !latest.IsZero() {
		stats.LastUpdate = &latest
	}

	return stats, nil
}
