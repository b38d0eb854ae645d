// Package pipeline orchestrates one scan: fold fetched snapshots into the
// history store, join venues, price every matched pair, score, and rank.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/margin"
	"github.com/zhehaowang/sneaky/internal/match"
	"github.com/zhehaowang/sneaky/internal/score"
	"github.com/zhehaowang/sneaky/internal/snapshot"
	"github.com/zhehaowang/sneaky/internal/timeseries"
)

// Pipeline wires the scan stages together. Stages are pure with respect to
// their inputs; the only writes are the history merge up front and the
// optional result persistence at the end.
type Pipeline struct {
	matcher     *match.Matcher
	engine      *margin.Engine
	scorer      score.Scorer
	series      *timeseries.Store
	results     domain.ResultStore // nil disables persistence
	concurrency int
	logger      *slog.Logger
}

// New creates a Pipeline. concurrency bounds how many pairs are priced in
// parallel; values below 1 are clamped to 1.
func New(
	matcher *match.Matcher,
	engine *margin.Engine,
	scorer score.Scorer,
	series *timeseries.Store,
	results domain.ResultStore,
	concurrency int,
	logger *slog.Logger,
) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		matcher:     matcher,
		engine:      engine,
		scorer:      scorer,
		series:      series,
		results:     results,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "pipeline")),
	}
}

// Result is the output of one scan run.
type Result struct {
	Report domain.RunReport
	Items  []domain.ScoredItem
	Match  match.Stats
}

// Run executes one scan over the loaded snapshots and returns the ranked
// output. Per-item pricing failures abort the run: they indicate broken
// configuration, not bad data, and a partial ranking would be misleading.
func (p *Pipeline) Run(ctx context.Context, snapshots map[domain.Venue]*snapshot.Result) (*Result, error) {
	runID := uuid.New().String()
	started := time.Now().UTC()
	logger := p.logger.With(slog.String("run_id", runID))

	if err := p.mergeHistory(snapshots); err != nil {
		return nil, fmt.Errorf("pipeline: merge history: %w", err)
	}

	catalogs := make(map[domain.Venue]domain.Catalog, len(snapshots))
	for venue, snap := range snapshots {
		catalogs[venue] = snap.Catalog
	}
	matched, stats := p.matcher.Match(catalogs)

	var (
		mu       sync.Mutex
		items    []domain.ScoredItem
		eligible int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, item := range matched {
		item := item
		g.Go(func() error {
			res, err := p.engine.Compute(gctx, item)
			if err != nil {
				return err
			}
			if !res.Eligible {
				return nil
			}
			scored, err := p.scorer.Score(item, res)
			if err != nil {
				return err
			}

			mu.Lock()
			eligible++
			items = append(items, scored)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: price and score: %w", err)
	}

	score.Rank(items)

	report := domain.RunReport{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		TotalPairs: stats.TotalPairs,
		Matched:    stats.MatchedPairs,
		Eligible:   eligible,
		Scored:     len(items),
	}

	if p.results != nil {
		if err := p.results.InsertRun(ctx, report); err != nil {
			return nil, fmt.Errorf("pipeline: persist run: %w", err)
		}
		if err := p.results.InsertScoredBatch(ctx, runID, items); err != nil {
			return nil, fmt.Errorf("pipeline: persist scored items: %w", err)
		}
	}

	logger.Info("scan complete",
		slog.Int("total_pairs", report.TotalPairs),
		slog.Int("matched", report.Matched),
		slog.Int("eligible", report.Eligible),
		slog.Int("scored", report.Scored),
		slog.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)
	return &Result{Report: report, Items: items, Match: stats}, nil
}

// mergeHistory folds every snapshot into the per-(style, size) store before
// matching, so this run's scoring already sees this run's observations. A
// listing venue's list price is recorded on the bid side: it is the price a
// seller could hit.
func (p *Pipeline) mergeHistory(snapshots map[domain.Venue]*snapshot.Result) error {
	for venue, snap := range snapshots {
		for styleID, style := range snap.Catalog {
			quotes := make(map[domain.SizeKey]domain.Quote, len(style.Sizes))
			txns := make(map[domain.SizeKey][]domain.Transaction)
			for key, rec := range style.Sizes {
				switch {
				case rec.Quote != nil:
					quotes[key] = *rec.Quote
				case rec.ListPrice > 0:
					quotes[key] = domain.Quote{BestBid: rec.ListPrice}
				default:
					// Sale-only record: no price point this fetch.
					quotes[key] = domain.Quote{}
				}
				if len(rec.Transactions) > 0 {
					txns[key] = rec.Transactions
				}
			}
			if err := p.series.Merge(venue, snap.FetchedAt, styleID, quotes, txns); err != nil {
				return err
			}
		}
	}
	return nil
}
