// Package timeseries persists per-(style, size) price and sale history as
// venue-keyed JSON documents, one file per key, and merges incremental
// fetches without duplicating re-observed transactions.
package timeseries

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// Store reads and writes size documents under a root directory at
// <root>/<style_id>/<size>.json. Concurrent writers to the same key must be
// serialized by the caller; the natural shape is one writer per run.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		root:   dir,
		logger: logger.With(slog.String("component", "timeseries")),
	}
}

func (s *Store) path(styleID domain.StyleID, size domain.SizeKey) string {
	return filepath.Join(s.root, string(styleID), string(size)+".json")
}

func (s *Store) read(styleID domain.StyleID, size domain.SizeKey) (domain.SizeDocument, error) {
	data, err := os.ReadFile(s.path(styleID, size))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.SizeDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("timeseries: read %s/%s: %w", styleID, size, err)
	}
	var doc domain.SizeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("timeseries: decode %s/%s: %w", styleID, size, err)
	}
	return doc, nil
}

func (s *Store) write(styleID domain.StyleID, size domain.SizeKey, doc domain.SizeDocument) error {
	path := s.path(styleID, size)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("timeseries: mkdir for %s: %w", styleID, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("timeseries: encode %s/%s: %w", styleID, size, err)
	}
	// Write-then-rename so a crashed run never leaves a torn document.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("timeseries: write %s/%s: %w", styleID, size, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("timeseries: rename %s/%s: %w", styleID, size, err)
	}
	return nil
}

// Merge folds one fetch into the stored history. For every size touched the
// price snapshot is prepended (each fetch is a new observation, no dedup);
// the transaction merge prepends only the strictly newer prefix of the
// fetched list, located by the stored head id. Merging the same fetch twice
// changes nothing on the transaction side.
func (s *Store) Merge(
	venue domain.Venue,
	fetchTime time.Time,
	styleID domain.StyleID,
	sizeQuotes map[domain.SizeKey]domain.Quote,
	sizeTransactions map[domain.SizeKey][]domain.Transaction,
) error {
	for size, quote := range sizeQuotes {
		doc, err := s.read(styleID, size)
		if err != nil {
			return err
		}
		series, ok := doc[venue]
		if !ok {
			series = &domain.VenueSeries{}
			doc[venue] = series
		}

		series.Prices = append([]domain.PricePoint{pricePoint(fetchTime, quote)}, series.Prices...)

		if txns, ok := sizeTransactions[size]; ok && len(txns) > 0 {
			series.Transactions = s.mergeTransactions(styleID, size, series.Transactions, txns)
		}

		if err := s.write(styleID, size, doc); err != nil {
			return err
		}
	}
	return nil
}

// mergeTransactions prepends the strictly newer prefix of fetched (newest
// first) onto stored. An empty stored list adopts the whole batch. When the
// stored head id is absent from the batch the histories may not be
// contiguous; the whole batch is prepended anyway and the gap is logged,
// since dropping stored data silently would be worse.
func (s *Store) mergeTransactions(
	styleID domain.StyleID,
	size domain.SizeKey,
	stored []domain.TransactionPoint,
	fetched []domain.Transaction,
) []domain.TransactionPoint {
	points := make([]domain.TransactionPoint, len(fetched))
	for i, t := range fetched {
		points[i] = domain.TransactionPoint{
			Price: t.Price,
			Time:  t.Time.UTC().Format(time.RFC3339Nano),
			ID:    t.ID,
		}
	}

	if len(stored) == 0 {
		return points
	}

	lastID := stored[0].ID
	idx := len(points)
	for i, p := range points {
		if p.ID == lastID {
			idx = i
			break
		}
	}
	if idx == len(points) {
		s.logger.Warn("stored head transaction absent from fetch, possible history gap",
			slog.String("style_id", string(styleID)),
			slog.String("size", string(size)),
			slog.String("stored_head", lastID),
			slog.Int("fetched", len(points)),
		)
	}
	return append(points[:idx:idx], stored...)
}

func pricePoint(fetchTime time.Time, q domain.Quote) domain.PricePoint {
	p := domain.PricePoint{Time: fetchTime.UTC().Format(time.RFC3339Nano)}
	if q.BestBid > 0 {
		bid := q.BestBid
		p.BidPrice = &bid
	}
	if q.BestAsk > 0 {
		ask := q.BestAsk
		p.AskPrice = &ask
	}
	return p
}

// Get returns the stored document for one (style, size). A missing file
// yields an empty document.
func (s *Store) Get(styleID domain.StyleID, size domain.SizeKey) (domain.SizeDocument, error) {
	return s.read(styleID, size)
}

// GetStyle returns every stored size document for a style, keyed by size. A
// missing style directory yields an empty map.
func (s *Store) GetStyle(styleID domain.StyleID) (map[domain.SizeKey]domain.SizeDocument, error) {
	dir := filepath.Join(s.root, string(styleID))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[domain.SizeKey]domain.SizeDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("timeseries: read style dir %s: %w", styleID, err)
	}

	out := make(map[domain.SizeKey]domain.SizeDocument, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		size := domain.SizeKey(strings.TrimSuffix(name, ".json"))
		doc, err := s.read(styleID, size)
		if err != nil {
			return nil, err
		}
		out[size] = doc
	}
	return out, nil
}

// Styles lists every style with stored history, in directory order. A
// missing root yields an empty slice.
func (s *Store) Styles() ([]domain.StyleID, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("timeseries: read root: %w", err)
	}

	var styles []domain.StyleID
	for _, entry := range entries {
		if entry.IsDir() {
			styles = append(styles, domain.StyleID(entry.Name()))
		}
	}
	return styles, nil
}

// Transactions implements domain.TransactionHistory: the stored sales for
// the key, newest first. Missing records yield an empty slice.
func (s *Store) Transactions(styleID domain.StyleID, size domain.SizeKey, venue domain.Venue) ([]domain.TransactionPoint, error) {
	doc, err := s.read(styleID, size)
	if err != nil {
		return nil, err
	}
	series, ok := doc[venue]
	if !ok {
		return nil, nil
	}
	return series.Transactions, nil
}
