package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/notify"
	"github.com/zhehaowang/sneaky/internal/snapshot"
)

// ScanMode runs one full scan: load every configured venue snapshot, run the
// pipeline, deliver the report, and archive the run output when blob storage
// is enabled.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	snapshots, err := a.loadSnapshots(deps)
	if err != nil {
		return err
	}

	res, err := deps.Pipeline.Run(ctx, snapshots)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	topN := a.cfg.Strategy.TopN
	fmt.Print(notify.FormatReport(res.Report, res.Items, topN))

	if err := deps.Notifier.SendReport(ctx, res.Report, res.Items, topN); err != nil {
		// Delivery failures are reported but do not fail a completed scan.
		a.logger.WarnContext(ctx, "report delivery incomplete",
			slog.String("error", err.Error()),
		)
	}

	if deps.Archiver != nil {
		count, err := deps.Archiver.ArchiveRun(ctx, res.Report, res.Items)
		if err != nil {
			return fmt.Errorf("app: archive run output: %w", err)
		}
		a.logger.InfoContext(ctx, "run output archived",
			slog.String("run_id", res.Report.RunID),
			slog.Int64("records", count),
		)
	}
	return nil
}

// ArchiveMode uploads the whole local history store to blob storage, one
// object per style. It requires s3 to be enabled.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	if deps.Archiver == nil {
		return fmt.Errorf("app: archive mode requires s3 to be enabled")
	}

	count, err := deps.Archiver.ArchiveTimeseries(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("app: archive timeseries: %w", err)
	}
	a.logger.InfoContext(ctx, "timeseries archived", slog.Int64("styles", count))
	return nil
}

// ReportMode prints the ranked output of the most recent persisted scan. It
// requires postgres to be enabled.
func (a *App) ReportMode(ctx context.Context, deps *Dependencies) error {
	if deps.Results == nil {
		return fmt.Errorf("app: report mode requires postgres to be enabled")
	}

	items, err := deps.Results.ListTopRecent(ctx, a.cfg.Strategy.TopN)
	if err != nil {
		return fmt.Errorf("app: list recent results: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("no persisted scan results")
		return nil
	}

	// Stage counts belong to the live scan; a replay only has the items.
	for i, item := range items {
		mark := ""
		if item.VolumeApproximated {
			mark = "~"
		}
		fmt.Printf("%2d. %-14s %-6s %-16s margin %7.2f (%5.1f%%) score %.4f%s\n",
			i+1,
			item.Item.StyleID,
			item.Item.Size.String(),
			item.Margin.ChosenAction,
			item.Margin.CrossingMargin,
			item.Margin.CrossingMarginRate*100,
			item.Score,
			mark,
		)
	}
	return nil
}

// loadSnapshots reads every configured venue's snapshot document from the
// snapshot directory. A missing snapshot file fails the scan: stale pricing
// against a venue that silently dropped out is worse than no scan at all.
func (a *App) loadSnapshots(deps *Dependencies) (map[domain.Venue]*snapshot.Result, error) {
	names := make([]string, 0, len(a.cfg.Venues))
	for name := range a.cfg.Venues {
		names = append(names, name)
	}
	sort.Strings(names)

	snapshots := make(map[domain.Venue]*snapshot.Result, len(names))
	for _, name := range names {
		path := filepath.Join(a.cfg.Data.SnapshotDir, a.cfg.Venues[name].Snapshot)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("app: snapshot for venue %s: %w", name, err)
		}

		res, err := deps.Loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("app: load snapshot %s: %w", path, err)
		}
		a.logger.Info("snapshot loaded",
			slog.String("venue", name),
			slog.Int("styles", len(res.Catalog)),
			slog.Int("skipped_orders", res.SkippedOrders),
			slog.Int("skipped_books", res.SkippedBooks),
		)
		snapshots[res.Venue] = res
	}
	return snapshots, nil
}
