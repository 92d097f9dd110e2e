//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/service"
	"github.com/finsight-ai/finsight/internal/testutil"
)

func TestQueryLogRepository_CreateQueryLog(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryLogRepository(pool)

	id, err := repo.CreateQueryLog(ctx, service.QueryLogEntry{
		Question:   "What did NVIDIA say about data center revenue?",
		Answer:     "Data center revenue grew substantially [NVDA 2024 Q2].",
		Confidence: 0.91,
		Filters:    service.SearchFilters{Ticker: "NVDA", Year: 2024},
		Sources: []service.AnswerSource{
			{Ticker: "NVDA", Year: 2024, Quarter: 2, Score: 0.92},
		},
		DurationMs: 1250,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	count, err := repo.CountQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestQueryLogRepository_CreateQueryLog_NoFilters(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryLogRepository(pool)

	id, err := repo.CreateQueryLog(ctx, service.QueryLogEntry{
		Question: "Any quantum computing milestones?",
		Answer:   "I could not find relevant information in the transcript corpus to answer this question.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
