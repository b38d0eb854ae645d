package margin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/fees"
	"github.com/zhehaowang/sneaky/internal/fx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSchedule() *fees.Schedule {
	return fees.NewSchedule(map[domain.Venue]fees.VenueFees{
		"stockx":     {FixedBuyFee: 14, Currency: "USD", Tick: 1},
		"flightclub": {CommissionPercent: 20, Currency: "USD"},
		"du":         {CommissionPercent: 10, Currency: "CNY"},
	}, fx.Static(map[string]float64{"CNY/USD": 0.15}))
}

func matchedItem(bid, ask float64, sells map[domain.Venue]float64) domain.MatchedItem {
	size, _ := domain.ParseShoeSize("9.5")
	venues := map[domain.Venue]domain.VenueRecord{
		"stockx": {Venue: "stockx", Currency: "USD", Quote: &domain.Quote{BestBid: bid, BestAsk: ask}},
	}
	for v, px := range sells {
		traitsCcy := "USD"
		if v == "du" {
			traitsCcy = "CNY"
		}
		venues[v] = domain.VenueRecord{Venue: v, Currency: traitsCcy, ListPrice: px}
	}
	return domain.MatchedItem{
		StyleID: domain.NormalizeStyleID("CP9654"),
		Size:    size,
		Venues:  venues,
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeCrossingAndAdding(t *testing.T) {
	e := NewEngine("stockx", []domain.Venue{"flightclub", "du"}, testSchedule(), testLogger())

	// 20% consignment commission on a 160 sell: proceeds 128. Buying the 100
	// ask costs a fixed 14 fee; adding improves the 100 bid by one tick.
	item := matchedItem(100, 100, map[domain.Venue]float64{"flightclub": 160})
	res, err := e.Compute(context.Background(), item)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !res.Eligible {
		t.Fatalf("expected eligible")
	}
	if !almostEqual(res.CrossingMargin, 14) { // 128 - 100 - 14
		t.Fatalf("crossing %.4f want 14", res.CrossingMargin)
	}
	if !almostEqual(res.CrossingMarginRate, 0.14) {
		t.Fatalf("crossing rate %.4f want 0.14", res.CrossingMarginRate)
	}
	if !almostEqual(res.AddingMargin, 13) { // 128 - 100 - (1 + 14)
		t.Fatalf("adding %.4f want 13", res.AddingMargin)
	}
	if !almostEqual(res.AddingMarginRate, 13.0/101.0) {
		t.Fatalf("adding rate %.6f want %.6f", res.AddingMarginRate, 13.0/101.0)
	}
	if res.ChosenAction != "sell:flightclub" {
		t.Fatalf("action %q want sell:flightclub", res.ChosenAction)
	}
}

func TestComputeNegativeCrossingStillReported(t *testing.T) {
	e := NewEngine("stockx", []domain.Venue{"flightclub"}, testSchedule(), testLogger())

	item := matchedItem(100, 120, map[domain.Venue]float64{"flightclub": 160})
	res, err := e.Compute(context.Background(), item)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !almostEqual(res.CrossingMargin, -6) { // 128 - 120 - 14
		t.Fatalf("crossing %.4f want -6", res.CrossingMargin)
	}
	if !almostEqual(res.AddingMargin, 13) {
		t.Fatalf("adding %.4f want 13", res.AddingMargin)
	}
}

func TestComputePicksBestSellVenue(t *testing.T) {
	e := NewEngine("stockx", []domain.Venue{"flightclub", "du"}, testSchedule(), testLogger())

	// du: 2000 CNY * 0.15 = 300 USD, 10% commission leaves 270, beating the
	// flightclub proceeds of 128. Rates must follow the chosen venue.
	item := matchedItem(100, 120, map[domain.Venue]float64{
		"flightclub": 160,
		"du":         2000,
	})
	res, err := e.Compute(context.Background(), item)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.ChosenAction != "sell:du" {
		t.Fatalf("action %q want sell:du", res.ChosenAction)
	}
	if !almostEqual(res.CrossingMargin, 136) { // 270 - 120 - 14
		t.Fatalf("crossing %.4f want 136", res.CrossingMargin)
	}
	if !almostEqual(res.CrossingMarginRate, 136.0/120.0) {
		t.Fatalf("crossing rate %.6f", res.CrossingMarginRate)
	}
	if !almostEqual(res.AddingMargin, 270-100-15) {
		t.Fatalf("adding %.4f want 155", res.AddingMargin)
	}
}

func TestComputeIneligibleWithoutRestingInterest(t *testing.T) {
	e := NewEngine("stockx", []domain.Venue{"flightclub"}, testSchedule(), testLogger())

	for _, tc := range []struct {
		name     string
		bid, ask float64
	}{
		{"zero bid", 0, 120},
		{"zero ask", 100, 0},
		{"empty book", 0, 0},
	} {
		item := matchedItem(tc.bid, tc.ask, map[domain.Venue]float64{"flightclub": 160})
		res, err := e.Compute(context.Background(), item)
		if err != nil {
			t.Fatalf("%s: compute: %v", tc.name, err)
		}
		if res.Eligible {
			t.Fatalf("%s: expected ineligible", tc.name)
		}
		if res.AddingMargin != 0 || res.AddingMarginRate != 0 || res.CrossingMargin != 0 {
			t.Fatalf("%s: margins not zero: %+v", tc.name, res)
		}
	}
}

func TestComputeNoSellVenueIneligible(t *testing.T) {
	e := NewEngine("stockx", []domain.Venue{"flightclub", "du"}, testSchedule(), testLogger())

	item := matchedItem(100, 120, nil)
	res, err := e.Compute(context.Background(), item)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Eligible {
		t.Fatalf("expected ineligible without sell venues")
	}
}

func TestComputeUnknownVenueSurfacesTypedError(t *testing.T) {
	sched := fees.NewSchedule(map[domain.Venue]fees.VenueFees{
		"stockx": {FixedBuyFee: 14, Currency: "USD", Tick: 1},
	}, fx.Static(nil))
	e := NewEngine("stockx", []domain.Venue{"flightclub"}, sched, testLogger())

	item := matchedItem(100, 120, map[domain.Venue]float64{"flightclub": 160})
	_, err := e.Compute(context.Background(), item)
	if !errors.Is(err, domain.ErrUnknownVenue) {
		t.Fatalf("got %v want ErrUnknownVenue", err)
	}
}
