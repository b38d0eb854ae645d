package domain

import "context"

// FXSource converts an amount between currencies at the current spot rate.
// Implementations are referentially transparent within a single run.
type FXSource interface {
	// Rate returns the multiplier that converts one unit of from into to.
	Rate(ctx context.Context, from, to string) (float64, error)
}

// FeeSchedule supplies venue fee math to the arbitrage engine. New sell
// venues must be addable without touching margin code, so the schedule owns
// every venue-specific constant.
type FeeSchedule interface {
	// SellProceeds returns the USD amount left after selling at sellPrice
	// (in the venue's own currency) through the venue: commission and
	// percentage fees plus fixed surcharges, all converted to USD.
	SellProceeds(ctx context.Context, venue Venue, sellPrice float64) (float64, error)
	// BuyFee returns the fixed USD fee for buying on the venue.
	BuyFee(ctx context.Context, venue Venue) (float64, error)
	// Tick is the venue's minimum price increment, used when improving the
	// best bid rather than crossing the spread.
	Tick(venue Venue) float64
}

// TransactionHistory exposes stored sales for scoring. Satisfied by the
// time-series store.
type TransactionHistory interface {
	// Transactions returns the stored sales for the key, newest first. A
	// missing record yields an empty slice, not an error.
	Transactions(styleID StyleID, size SizeKey, venue Venue) ([]TransactionPoint, error)
}

// RateCache caches FX rates across runs.
type RateCache interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
	SetRate(ctx context.Context, from, to string, rate float64) error
}
