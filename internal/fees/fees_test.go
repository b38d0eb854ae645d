package fees

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/fx"
)

func testSchedule() *Schedule {
	return NewSchedule(map[domain.Venue]VenueFees{
		"du": {
			CommissionPercent:  5,
			TechServicePercent: 1,
			TransferPercent:    1,
			FixedSellFees:      33, // CNY: packaging + verification + service
			Currency:           "CNY",
		},
		"stockx": {FixedBuyFee: 13.95, Currency: "USD", Tick: 1},
	}, fx.Static(map[string]float64{"CNY/USD": 0.15}))
}

func TestSellProceedsConvertsAndDeductsFees(t *testing.T) {
	s := testSchedule()

	// 2000 CNY -> 300 USD; 7% total percentage fees -> 279; fixed 33 CNY ->
	// 4.95 USD.
	got, err := s.SellProceeds(context.Background(), "du", 2000)
	if err != nil {
		t.Fatalf("sell proceeds: %v", err)
	}
	want := 300*0.93 - 4.95
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("proceeds %.4f want %.4f", got, want)
	}
}

func TestBuyFee(t *testing.T) {
	s := testSchedule()

	got, err := s.BuyFee(context.Background(), "stockx")
	if err != nil {
		t.Fatalf("buy fee: %v", err)
	}
	if got != 13.95 {
		t.Fatalf("buy fee %.2f want 13.95", got)
	}
}

func TestUnknownVenue(t *testing.T) {
	s := testSchedule()

	if _, err := s.SellProceeds(context.Background(), "ebay", 100); !errors.Is(err, domain.ErrUnknownVenue) {
		t.Fatalf("got %v want ErrUnknownVenue", err)
	}
	if _, err := s.BuyFee(context.Background(), "ebay"); !errors.Is(err, domain.ErrUnknownVenue) {
		t.Fatalf("got %v want ErrUnknownVenue", err)
	}
}

func TestTickDefaultsToOne(t *testing.T) {
	s := testSchedule()

	if got := s.Tick("stockx"); got != 1 {
		t.Fatalf("tick %.1f want 1", got)
	}
	if got := s.Tick("du"); got != 1 {
		t.Fatalf("unset tick %.1f want default 1", got)
	}
}
