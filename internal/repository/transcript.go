package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/pagination"
	"github.com/finsight-ai/finsight/internal/service"
)

type TranscriptRepository struct {
	db dbtx
}

func NewTranscriptRepository(pool *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: pool}
}

func NewTranscriptRepositoryWithTx(tx pgx.Tx) *TranscriptRepository {
	return &TranscriptRepository{db: tx}
}

// Upsert inserts a transcript or, when (ticker, year, quarter) already
// exists, replaces its content in place. On replace the transcript keeps the
// existing row ID, which is written back to t.
func (r *TranscriptRepository) Upsert(ctx context.Context, t *domain.Transcript) error {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO transcripts (id, ticker, year, quarter, source, call_date, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (ticker, year, quarter) DO UPDATE
		 SET source = EXCLUDED.source,
		     call_date = EXCLUDED.call_date,
		     content = EXCLUDED.content,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		t.ID, t.Ticker, t.Year, t.Quarter, t.Source, t.CallDate, t.Content, t.CreatedAt, t.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TranscriptRepository) GetByID(ctx context.Context, id string) (*domain.Transcript, error) {
	var t domain.Transcript
	err := r.db.QueryRow(ctx,
		`SELECT id, ticker, year, quarter, source, call_date, content, created_at, updated_at
		 FROM transcripts WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Ticker, &t.Year, &t.Quarter, &t.Source, &t.CallDate, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TranscriptRepository) GetByPeriod(ctx context.Context, ticker string, period domain.Period) (*domain.Transcript, error) {
	var t domain.Transcript
	err := r.db.QueryRow(ctx,
		`SELECT id, ticker, year, quarter, source, call_date, content, created_at, updated_at
		 FROM transcripts WHERE ticker = $1 AND year = $2 AND quarter = $3`,
		ticker, period.Year, period.Quarter,
	).Scan(&t.ID, &t.Ticker, &t.Year, &t.Quarter, &t.Source, &t.CallDate, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, err
	}
	return &t, nil
}

// appendFilterConds adds ticker/year/quarter conditions for the set filters,
// numbering placeholders after the existing args.
func appendFilterConds(conds []string, args []any, f service.SearchFilters) ([]string, []any) {
	if f.Ticker != "" {
		args = append(args, f.Ticker)
		conds = append(conds, "ticker = $"+strconv.Itoa(len(args)))
	}
	if f.Year > 0 {
		args = append(args, f.Year)
		conds = append(conds, "year = $"+strconv.Itoa(len(args)))
	}
	if f.Quarter > 0 {
		args = append(args, f.Quarter)
		conds = append(conds, "quarter = $"+strconv.Itoa(len(args)))
	}
	return conds, args
}

// ListWithCursor pages transcripts newest-first, optionally filtered by
// ticker, year, and quarter.
func (r *TranscriptRepository) ListWithCursor(ctx context.Context, filters service.SearchFilters, cursor *pagination.Cursor, limit int) (*service.TranscriptPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, ticker, year, quarter, source, call_date, content, created_at, updated_at
	          FROM transcripts`
	conds, args := appendFilterConds(nil, nil, filters)

	if cursor != nil {
		args = append(args, cursor.Timestamp, cursor.LastID)
		conds = append(conds, "(updated_at, id) < ($"+strconv.Itoa(len(args)-1)+", $"+strconv.Itoa(len(args))+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit+1)
	query += " ORDER BY updated_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanTranscriptRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.UpdatedAt)
	}

	return &service.TranscriptPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *TranscriptRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM transcripts WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrTranscriptNotFound
	}
	return nil
}

// DeleteByFilters bulk-deletes transcripts matching the filters and returns
// how many rows went. Empty filters clear the whole table.
func (r *TranscriptRepository) DeleteByFilters(ctx context.Context, filters service.SearchFilters) (int64, error) {
	query := `DELETE FROM transcripts`
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

func (r *TranscriptRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transcripts`).Scan(&count)
	return count, err
}

func (r *TranscriptRepository) CountByTicker(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ticker, COUNT(*) FROM transcripts GROUP BY ticker ORDER BY ticker`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCountRows(rows)
}

func (r *TranscriptRepository) CountBySource(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source, COUNT(*) FROM transcripts GROUP BY source ORDER BY source`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCountRows(rows)
}

// LatestUpdate returns the most recent transcript update time, or the zero
// time when the store is empty.
func (r *TranscriptRepository) LatestUpdate(ctx context.Context) (time.Time, error) {
	var latest *time.Time
	err := r.db.QueryRow(ctx, `SELECT MAX(updated_at) FROM transcripts`).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

func scanTranscriptRows(rows pgx.Rows) ([]*domain.Transcript, error) {
	var results []*domain.Transcript
	for rows.Next() {
		var t domain.Transcript
		if err := rows.Scan(&t.ID, &t.Ticker, &t.Year, &t.Quarter, &t.Source, &t.CallDate, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &t)
	}
	return results, rows.Err()
}

func scanCountRows(rows pgx.Rows) (map[string]int64, error) {
	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}
