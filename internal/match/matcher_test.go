package match

import (
	"io"
	"log/slog"
	"testing"

	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/size"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTraits() map[domain.Venue]domain.VenueTraits {
	return map[domain.Venue]domain.VenueTraits{
		"stockx":     {Venue: "stockx", SizeSystem: "us", Currency: "USD"},
		"flightclub": {Venue: "flightclub", SizeSystem: "us", Currency: "USD", SellSide: true},
		"du":         {Venue: "du", SizeSystem: "eu", Currency: "CNY", SellSide: true},
	}
}

func newTestMatcher() *Matcher {
	conv := size.NewConverter(size.DefaultCharts(), testLogger())
	return NewMatcher(conv, testTraits(), testLogger())
}

func usCatalog(styleRaw string, sizes ...string) domain.Catalog {
	styleID := domain.NormalizeStyleID(styleRaw)
	sizeMap := make(map[domain.SizeKey]domain.VenueRecord, len(sizes))
	for _, s := range sizes {
		parsed, _ := domain.ParseShoeSize(s)
		sizeMap[parsed.Key()] = domain.VenueRecord{
			Venue: "stockx", Currency: "USD",
			Quote: &domain.Quote{BestBid: 100, BestAsk: 120},
		}
	}
	return domain.Catalog{styleID: {StyleID: styleID, Sizes: sizeMap}}
}

func TestMatchSingleSharedPair(t *testing.T) {
	m := newTestMatcher()

	sxStyle := domain.NormalizeStyleID("CP9654")
	fcStyle := domain.NormalizeStyleID("cp-9654") // differs only in case/hyphen
	fcSize, _ := domain.ParseShoeSize("9.5")

	catalogs := map[domain.Venue]domain.Catalog{
		"stockx": usCatalog("CP9654", "9.5", "10"),
		"flightclub": {
			fcStyle: {
				StyleID: fcStyle,
				Sizes: map[domain.SizeKey]domain.VenueRecord{
					fcSize.Key(): {Venue: "flightclub", Currency: "USD", ListPrice: 260},
				},
			},
		},
	}

	matched, stats := m.Match(catalogs)
	if len(matched) != 1 {
		t.Fatalf("matched %d want 1", len(matched))
	}
	item, ok := matched[Key{StyleID: sxStyle, Size: "9.5"}]
	if !ok {
		t.Fatalf("expected match for CP9654/9.5, got %v", matched)
	}
	if len(item.Venues) != 2 {
		t.Fatalf("venues %d want 2", len(item.Venues))
	}
	if item.Venues["flightclub"].ListPrice != 260 {
		t.Fatalf("flightclub record not carried: %+v", item.Venues["flightclub"])
	}
	if stats.MatchedPairs != 1 || stats.StylesShared != 1 {
		t.Fatalf("stats %+v", stats)
	}
}

func TestMatchSubstantiveDifferenceDoesNotMatch(t *testing.T) {
	m := newTestMatcher()

	catalogs := map[domain.Venue]domain.Catalog{
		"stockx":     usCatalog("CP9654", "9.5"),
		"flightclub": usCatalog("CP9655", "9.5"), // different style in substance
	}
	matched, _ := m.Match(catalogs)
	if len(matched) != 0 {
		t.Fatalf("matched %d want 0", len(matched))
	}
}

func TestMatchConvertsEUVenueSizes(t *testing.T) {
	m := newTestMatcher()

	styleID := domain.NormalizeStyleID("CP9654")
	// Nike men EU chart: 42.5 -> US 9.0, 47.5 -> US 13.0 (47.5 pins the
	// inference to the Nike men chart).
	duSizes := map[domain.SizeKey]domain.VenueRecord{}
	for _, raw := range []string{"42.5", "47.5"} {
		s, _ := domain.ParseShoeSize(raw)
		duSizes[s.Key()] = domain.VenueRecord{Venue: "du", Currency: "CNY", ListPrice: 1800}
	}

	catalogs := map[domain.Venue]domain.Catalog{
		"stockx": usCatalog("CP9654", "9", "13"),
		"du":     {styleID: {StyleID: styleID, Sizes: duSizes}},
	}

	matched, stats := m.Match(catalogs)
	if len(matched) != 2 {
		t.Fatalf("matched %d want 2: %v", len(matched), matched)
	}
	if _, ok := matched[Key{StyleID: styleID, Size: "9.0"}]; !ok {
		t.Fatalf("eu 42.5 did not join us 9.0")
	}
	if stats.SkippedSizes != 0 {
		t.Fatalf("skipped %d want 0", stats.SkippedSizes)
	}
}

func TestMatchExcludesUnconvertibleSizes(t *testing.T) {
	m := newTestMatcher()

	styleID := domain.NormalizeStyleID("CP9654")
	duSizes := map[domain.SizeKey]domain.VenueRecord{}
	// 47.5 pins inference to the Nike men chart; the youth size has no EU
	// chart entry so its conversion fails and only it is excluded.
	for _, raw := range []string{"42.5", "47.5", "5.0Y"} {
		s, _ := domain.ParseShoeSize(raw)
		duSizes[s.Key()] = domain.VenueRecord{Venue: "du", Currency: "CNY", ListPrice: 1800}
	}

	catalogs := map[domain.Venue]domain.Catalog{
		"stockx": usCatalog("CP9654", "9"),
		"du":     {styleID: {StyleID: styleID, Sizes: duSizes}},
	}

	matched, stats := m.Match(catalogs)
	if len(matched) != 1 {
		t.Fatalf("matched %d want 1", len(matched))
	}
	if stats.SkippedSizes != 1 {
		t.Fatalf("skipped %d want 1", stats.SkippedSizes)
	}
}

func TestMatchSingleVenueEmitsNothing(t *testing.T) {
	m := newTestMatcher()

	catalogs := map[domain.Venue]domain.Catalog{
		"stockx": usCatalog("CP9654", "9.5", "10", "10.5"),
	}
	matched, stats := m.Match(catalogs)
	if len(matched) != 0 {
		t.Fatalf("matched %d want 0", len(matched))
	}
	if stats.TotalPairs != 3 {
		t.Fatalf("total pairs %d want 3", stats.TotalPairs)
	}
}
