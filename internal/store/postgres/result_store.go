package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// ResultStore implements domain.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *pgxpool.Pool
}

// NewResultStore creates a new ResultStore backed by the given connection pool.
func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// InsertRun stores one scan run's stage counts.
func (s *ResultStore) InsertRun(ctx context.Context, report domain.RunReport) error {
	const query = `
		INSERT INTO scan_runs (
			run_id, started_at, finished_at,
			total_pairs, matched, eligible, scored
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		report.RunID, report.StartedAt, report.FinishedAt,
		report.TotalPairs, report.Matched, report.Eligible, report.Scored,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert run %s: %w", report.RunID, err)
	}
	return nil
}

// InsertScoredBatch stores the ranked output of a run in one round trip.
func (s *ResultStore) InsertScoredBatch(ctx context.Context, runID string, items []domain.ScoredItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO scored_items (
			run_id, style_id, size, chosen_action,
			crossing_margin, crossing_margin_rate,
			adding_margin, adding_margin_rate,
			score, effective_volume, volume_approximated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, item := range items {
		batch.Queue(query,
			runID, string(item.Item.StyleID), item.Item.Size.String(), item.Margin.ChosenAction,
			item.Margin.CrossingMargin, item.Margin.CrossingMarginRate,
			item.Margin.AddingMargin, item.Margin.AddingMarginRate,
			item.Score, item.EffectiveVolume, item.VolumeApproximated,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert scored batch for run %s: %w", runID, err)
		}
	}
	return nil
}

// ListTopRecent returns the highest-scored items from the most recent run.
// Venue records are not persisted; returned items carry identity, margins,
// and score only.
func (s *ResultStore) ListTopRecent(ctx context.Context, limit int) ([]domain.ScoredItem, error) {
	const query = `
		SELECT style_id, size, chosen_action,
			crossing_margin, crossing_margin_rate,
			adding_margin, adding_margin_rate,
			score, effective_volume, volume_approximated
		FROM scored_items
		WHERE run_id = (
			SELECT run_id FROM scan_runs ORDER BY started_at DESC LIMIT 1
		)
		ORDER BY score DESC, style_id, size
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list top recent: %w", err)
	}
	defer rows.Close()

	var items []domain.ScoredItem
	for rows.Next() {
		var (
			item     domain.ScoredItem
			styleID  string
			sizeDesc string
		)
		if err := rows.Scan(
			&styleID, &sizeDesc, &item.Margin.ChosenAction,
			&item.Margin.CrossingMargin, &item.Margin.CrossingMarginRate,
			&item.Margin.AddingMargin, &item.Margin.AddingMarginRate,
			&item.Score, &item.EffectiveVolume, &item.VolumeApproximated,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan scored item: %w", err)
		}

		size, err := domain.ParseShoeSize(sizeDesc)
		if err != nil {
			return nil, fmt.Errorf("postgres: stored size %q: %w", sizeDesc, err)
		}
		item.Item = domain.MatchedItem{
			StyleID: domain.StyleID(styleID),
			Size:    size,
		}
		item.Margin.Eligible = true
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list top recent rows: %w", err)
	}
	return items, nil
}
