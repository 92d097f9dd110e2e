package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/service"
)

// TranscriptChunkRepository handles persistence of chunked transcript
// embeddings and similarity search over them.
type TranscriptChunkRepository struct {
	db dbtx
}

func NewTranscriptChunkRepository(pool *pgxpool.Pool) *TranscriptChunkRepository {
	return &TranscriptChunkRepository{db: pool}
}

func NewTranscriptChunkRepositoryWithTx(tx dbtx) *TranscriptChunkRepository {
	return &TranscriptChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a transcript and inserts new ones.
func (r *TranscriptChunkRepository) ReplaceChunks(ctx context.Context, transcriptID string, chunks []domain.TranscriptChunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transcript_chunks WHERE transcript_id = $1`, transcriptID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO transcript_chunks
				(id, transcript_id, ticker, year, quarter, chunk_index, content, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID,
			c.TranscriptID,
			c.Ticker,
			c.Year,
			c.Quarter,
			c.ChunkIndex,
			c.Content,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// SearchSemantic runs cosine similarity search over transcript chunks,
// scoring with 1 / (1 + distance) so higher is better. Filters are optional.
func (r *TranscriptChunkRepository) SearchSemantic(ctx context.Context, embedding []float32, filters service.SearchFilters, limit int) ([]*service.ChunkMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	conds := []string{"embedding IS NOT NULL"}
	args := []any{pgvector.NewVector(embedding)}
	conds, args = appendFilterConds(conds, args, filters)

	query := `SELECT id, transcript_id, ticker, year, quarter, chunk_index, content,
	                 1.0 / (1.0 + (embedding <=> $1)) AS score
	          FROM transcript_chunks
	          WHERE ` + strings.Join(conds, " AND ")

	args = append(args, limit)
	query += ` ORDER BY score DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.ChunkMatch, 0)
	for rows.Next() {
		var m service.ChunkMatch
		if err := rows.Scan(&m.ChunkID, &m.TranscriptID, &m.Ticker, &m.Year, &m.Quarter, &m.ChunkIndex, &m.Content, &m.Score); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}
	return results, rows.Err()
}

func (r *TranscriptChunkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transcript_chunks`).Scan(&count)
	return count, err
}

// DeleteByFilters bulk-deletes chunks matching the filters and returns how
// many rows went. Empty filters clear the whole table.
func (r *TranscriptChunkRepository) DeleteByFilters(ctx context.Context, filters service.SearchFilters) (int64, error) {
	query := `DELETE FROM transcript_chunks`
	conds, args := appendFilterConds(nil, nil, filters)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}
