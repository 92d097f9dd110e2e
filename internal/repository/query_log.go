package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-ai/finsight/internal/service"
)

// QueryLogRepository stores question/answer records for quality review.
type QueryLogRepository struct {
	pool *pgxpool.Pool
}

func NewQueryLogRepository(pool *pgxpool.Pool) *QueryLogRepository {
	return &QueryLogRepository{pool: pool}
}

func (r *QueryLogRepository) CreateQueryLog(ctx context.Context, entry service.QueryLogEntry) (string, error) {
	sourcesJSON, _ := json.Marshal(entry.Sources)

	filters := map[string]any{
		"question_length": len(entry.Question),
	}
	if entry.Filters.Ticker != "" {
		filters["ticker"] = entry.Filters.Ticker
	}
	if entry.Filters.Year > 0 {
		filters["year"] = entry.Filters.Year
	}
	if entry.Filters.Quarter > 0 {
		filters["quarter"] = entry.Filters.Quarter
	}
	filtersJSON, _ := json.Marshal(filters)

	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO query_logs (question, answer, confidence, filters, sources, source_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.Question,
		entry.Answer,
		entry.Confidence,
		filtersJSON,
		sourcesJSON,
		len(entry.Sources),
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *QueryLogRepository) CountQueries(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM query_logs`).Scan(&count)
	return count, err
}
