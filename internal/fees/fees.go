// Package fees implements the venue fee schedule consumed by the arbitrage
// engine. All venue-specific constants live here so new sell venues can be
// added without touching margin math.
package fees

import (
	"context"
	"fmt"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// ReferenceCurrency is the currency all margins are computed in.
const ReferenceCurrency = "USD"

// VenueFees holds one venue's fee constants. Percentages apply to the sell
// price; fixed amounts are denominated in the venue's currency.
type VenueFees struct {
	CommissionPercent  float64
	TechServicePercent float64
	TransferPercent    float64
	// FixedSellFees is the sum of packaging/verification/service surcharges
	// charged on a sale, in Currency.
	FixedSellFees float64
	// FixedBuyFee is the flat cost of buying on the venue (shipping etc.),
	// in Currency.
	FixedBuyFee float64
	Currency    string
	Tick        float64
}

// Schedule implements domain.FeeSchedule from per-venue fee constants and an
// FX collaborator for currency conversion.
type Schedule struct {
	venues map[domain.Venue]VenueFees
	fx     domain.FXSource
}

// NewSchedule creates a Schedule.
func NewSchedule(venues map[domain.Venue]VenueFees, fx domain.FXSource) *Schedule {
	return &Schedule{venues: venues, fx: fx}
}

func (s *Schedule) lookup(venue domain.Venue) (VenueFees, error) {
	f, ok := s.venues[venue]
	if !ok {
		return VenueFees{}, fmt.Errorf("fees: venue %q: %w", venue, domain.ErrUnknownVenue)
	}
	return f, nil
}

func (s *Schedule) toUSD(ctx context.Context, amount float64, ccy string) (float64, error) {
	if ccy == "" || ccy == ReferenceCurrency || amount == 0 {
		return amount, nil
	}
	rate, err := s.fx.Rate(ctx, ccy, ReferenceCurrency)
	if err != nil {
		return 0, fmt.Errorf("fees: fx %s to %s: %w", ccy, ReferenceCurrency, err)
	}
	return amount * rate, nil
}

// SellProceeds returns the USD amount left after selling at sellPrice (in the
// venue's currency): percentage fees come off the price, then fixed
// surcharges converted to USD.
func (s *Schedule) SellProceeds(ctx context.Context, venue domain.Venue, sellPrice float64) (float64, error) {
	f, err := s.lookup(venue)
	if err != nil {
		return 0, err
	}
	sellUSD, err := s.toUSD(ctx, sellPrice, f.Currency)
	if err != nil {
		return 0, err
	}
	fixedUSD, err := s.toUSD(ctx, f.FixedSellFees, f.Currency)
	if err != nil {
		return 0, err
	}
	pct := (f.CommissionPercent + f.TechServicePercent + f.TransferPercent) / 100
	return sellUSD*(1-pct) - fixedUSD, nil
}

// BuyFee returns the fixed USD fee for buying on the venue.
func (s *Schedule) BuyFee(ctx context.Context, venue domain.Venue) (float64, error) {
	f, err := s.lookup(venue)
	if err != nil {
		return 0, err
	}
	return s.toUSD(ctx, f.FixedBuyFee, f.Currency)
}

// Tick returns the venue's minimum price increment. Unknown venues get a
// tick of 1, the common venue default.
func (s *Schedule) Tick(venue domain.Venue) float64 {
	f, ok := s.venues[venue]
	if !ok || f.Tick <= 0 {
		return 1
	}
	return f.Tick
}
