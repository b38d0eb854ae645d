// Package margin computes fee-adjusted crossing and adding margins for
// matched items and selects the best sell action across eligible venues.
package margin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// Engine computes MarginResults. The buy side is fixed per engine; sell
// venues are tried in configured order and the best crossing margin wins.
type Engine struct {
	buyVenue   domain.Venue
	sellVenues []domain.Venue
	fees       domain.FeeSchedule
	logger     *slog.Logger
}

// NewEngine creates an Engine. sellVenues order is the deterministic
// tie-break when two venues produce the same crossing margin.
func NewEngine(buyVenue domain.Venue, sellVenues []domain.Venue, fees domain.FeeSchedule, logger *slog.Logger) *Engine {
	return &Engine{
		buyVenue:   buyVenue,
		sellVenues: sellVenues,
		fees:       fees,
		logger:     logger.With(slog.String("component", "margin_engine")),
	}
}

// Compute returns the margins for one matched item. Items without a resting
// bid and ask on the buy venue, or without any sell venue contribution, come
// back with Eligible=false and zero margins; that is not an error. Errors are
// configuration failures (unknown venue, FX) scoped to this item only.
func (e *Engine) Compute(ctx context.Context, item domain.MatchedItem) (domain.MarginResult, error) {
	var res domain.MarginResult

	buy, ok := item.Venues[e.buyVenue]
	if !ok || buy.Quote == nil || buy.Quote.BestBid <= 0 || buy.Quote.BestAsk <= 0 {
		return res, nil
	}
	bestBid, bestAsk := buy.Quote.BestBid, buy.Quote.BestAsk

	buyFee, err := e.fees.BuyFee(ctx, e.buyVenue)
	if err != nil {
		return res, fmt.Errorf("margin %s: %w", item.Key(), err)
	}
	tick := e.fees.Tick(e.buyVenue)

	// Try every eligible sell venue; the maximum crossing margin decides the
	// action, and rates are recomputed against that venue's proceeds rather
	// than mixed across venues.
	var (
		chosen       domain.Venue
		bestProceeds float64
		bestCrossing float64
		found        bool
	)
	for _, sv := range e.sellVenues {
		rec, ok := item.Venues[sv]
		if !ok || rec.ListPrice <= 0 {
			continue
		}
		proceeds, err := e.fees.SellProceeds(ctx, sv, rec.ListPrice)
		if err != nil {
			return res, fmt.Errorf("margin %s: %w", item.Key(), err)
		}
		crossing := proceeds - bestAsk - buyFee
		if !found || crossing > bestCrossing {
			found = true
			chosen = sv
			bestProceeds = proceeds
			bestCrossing = crossing
		}
	}
	if !found {
		return res, nil
	}

	res.Eligible = true
	res.ChosenAction = "sell:" + string(chosen)
	res.CrossingMargin = bestCrossing
	res.CrossingMarginRate = bestCrossing / bestAsk
	if bestBid > 0 {
		res.AddingMargin = bestProceeds - bestBid - (tick + buyFee)
		res.AddingMarginRate = res.AddingMargin / (bestBid + tick)
	}

	e.logger.Debug("margins computed",
		slog.String("item", item.Key()),
		slog.String("action", res.ChosenAction),
		slog.Float64("crossing", res.CrossingMargin),
		slog.Float64("crossing_rate", res.CrossingMarginRate),
		slog.Float64("adding", res.AddingMargin),
	)
	return res, nil
}
