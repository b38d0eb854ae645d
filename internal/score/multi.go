package score

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/zhehaowang/sneaky/internal/domain"
)

const secondsPerDay = 86400.0

// PriceBand discounts items whose buy-side ask is below the band's ceiling.
type PriceBand struct {
	Below    float64
	Discount float64
}

// MultiConfig carries the injected heuristic tables of the multi scorer.
type MultiConfig struct {
	// SizeDemand is the fallback demand-by-size curve used when a size has
	// no transaction history, in sales per day. It peaks at common adult
	// sizes and tapers at the extremes.
	SizeDemand map[domain.SizeKey]float64
	// PriceBands must be ordered by ascending ceiling; FloorDiscount applies
	// above the last ceiling. High absolute prices tie up more capital per
	// unit of margin rate, hence the penalty.
	PriceBands    []PriceBand
	FloorDiscount float64
}

// DefaultMultiConfig returns the empirical demand curve and the price bucket
// discounts ($300/$500/$1000 thresholds).
func DefaultMultiConfig() MultiConfig {
	return MultiConfig{
		SizeDemand: map[domain.SizeKey]float64{
			"6.0": 0.3, "6.5": 0.4, "7.0": 0.6, "7.5": 0.8,
			"8.0": 1.2, "8.5": 1.8, "9.0": 2.0, "9.5": 1.8,
			"10.0": 1.6, "10.5": 1.4, "11.0": 1.2, "11.5": 0.8,
			"12.0": 0.6, "12.5": 0.4, "13.0": 0.3, "14.0": 0.2,
		},
		PriceBands: []PriceBand{
			{Below: 300, Discount: 1.0},
			{Below: 500, Discount: 0.9},
			{Below: 1000, Discount: 0.6},
		},
		FloorDiscount: 0.3,
	}
}

// Multi scores by crossing margin rate damped by the square root of the
// buy-side transaction velocity and a price-bucket discount. The square root
// keeps ranking primarily margin-driven while still favoring liquid items,
// without letting one outlier-high-volume item dominate linearly.
type Multi struct {
	cfg      MultiConfig
	history  domain.TransactionHistory
	buyVenue domain.Venue
	now      func() time.Time
	logger   *slog.Logger
}

// NewMulti creates a Multi scorer reading history for the given buy venue.
func NewMulti(cfg MultiConfig, history domain.TransactionHistory, buyVenue domain.Venue, logger *slog.Logger) *Multi {
	return &Multi{
		cfg:      cfg,
		history:  history,
		buyVenue: buyVenue,
		now:      time.Now,
		logger:   logger.With(slog.String("scorer", "multi")),
	}
}

// Name returns the scorer identifier.
func (m *Multi) Name() string { return "multi" }

// Score computes crossing_margin_rate * sqrt(transaction_rate) *
// price_discount. Items with no stored history fall back to the demand-by-
// size curve and are flagged approximated; sizes absent from the curve
// degrade to a zero rate with a warning rather than failing.
func (m *Multi) Score(item domain.MatchedItem, margin domain.MarginResult) (domain.ScoredItem, error) {
	out := domain.ScoredItem{Item: item, Margin: margin}

	txns, err := m.history.Transactions(item.StyleID, item.Size.Key(), m.buyVenue)
	if err != nil {
		return out, fmt.Errorf("score %s: read history: %w", item.Key(), err)
	}

	switch {
	case len(txns) > 0:
		out.EffectiveVolume = m.transactionRate(txns)
	default:
		out.VolumeApproximated = true
		demand, ok := m.cfg.SizeDemand[item.Size.Key()]
		if !ok {
			m.logger.Warn("size absent from demand curve, zero transaction rate",
				slog.String("item", item.Key()),
			)
		}
		out.EffectiveVolume = demand
	}

	out.Score = margin.CrossingMarginRate *
		math.Sqrt(out.EffectiveVolume) *
		m.priceDiscount(item)
	return out, nil
}

// transactionRate extrapolates sales per day from the kept history: count
// scaled by the span back to the oldest kept transaction.
func (m *Multi) transactionRate(txns []domain.TransactionPoint) float64 {
	oldest, err := parseTime(txns[len(txns)-1].Time)
	if err != nil {
		m.logger.Warn("unparseable transaction time, zero transaction rate",
			slog.String("time", txns[len(txns)-1].Time),
		)
		return 0
	}
	elapsed := m.now().Sub(oldest).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(len(txns)) * secondsPerDay / elapsed
}

func (m *Multi) priceDiscount(item domain.MatchedItem) float64 {
	ask := 0.0
	if rec, ok := item.Venues[m.buyVenue]; ok && rec.Quote != nil {
		ask = rec.Quote.BestAsk
	}
	for _, band := range m.cfg.PriceBands {
		if ask < band.Below {
			return band.Discount
		}
	}
	return m.cfg.FloorDiscount
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
