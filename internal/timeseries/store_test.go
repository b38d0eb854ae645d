package timeseries

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/zhehaowang/sneaky/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), testLogger())
}

var (
	styleID = domain.NormalizeStyleID("CP9654")
	sizeKey = domain.SizeKey("9.5")
)

func txn(id string, price float64, age time.Duration) domain.Transaction {
	return domain.Transaction{
		Price: price,
		Time:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).Add(-age),
		ID:    id,
	}
}

func mergeOnce(t *testing.T, s *Store, txns []domain.Transaction) {
	t.Helper()
	err := s.Merge("du", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), styleID,
		map[domain.SizeKey]domain.Quote{sizeKey: {BestBid: 1500}},
		map[domain.SizeKey][]domain.Transaction{sizeKey: txns},
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
}

func storedTxnIDs(t *testing.T, s *Store) []string {
	t.Helper()
	txns, err := s.Transactions(styleID, sizeKey, "du")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	ids := make([]string, len(txns))
	for i, tx := range txns {
		ids[i] = tx.ID
	}
	return ids
}

func TestMergeAdoptsBatchWhenEmpty(t *testing.T) {
	s := newTestStore(t)

	mergeOnce(t, s, []domain.Transaction{
		txn("c", 1500, 1*time.Hour),
		txn("b", 1480, 2*time.Hour),
		txn("a", 1450, 3*time.Hour),
	})

	if got := storedTxnIDs(t, s); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("stored %v want [c b a]", got)
	}
}

func TestMergePrependsNewerPrefixOnly(t *testing.T) {
	s := newTestStore(t)

	mergeOnce(t, s, []domain.Transaction{
		txn("c", 1500, 1*time.Hour),
		txn("b", 1480, 2*time.Hour),
	})
	// Overlapping refetch: e, d are new; c matches the stored head.
	mergeOnce(t, s, []domain.Transaction{
		txn("e", 1520, 10*time.Minute),
		txn("d", 1510, 30*time.Minute),
		txn("c", 1500, 1*time.Hour),
		txn("b", 1480, 2*time.Hour),
	})

	if got := storedTxnIDs(t, s); !reflect.DeepEqual(got, []string{"e", "d", "c", "b"}) {
		t.Fatalf("stored %v want [e d c b]", got)
	}
}

func TestMergeIdempotent(t *testing.T) {
	s := newTestStore(t)

	batch := []domain.Transaction{
		txn("c", 1500, 1*time.Hour),
		txn("b", 1480, 2*time.Hour),
	}
	mergeOnce(t, s, batch)
	mergeOnce(t, s, batch)

	if got := storedTxnIDs(t, s); !reflect.DeepEqual(got, []string{"c", "b"}) {
		t.Fatalf("double merge duplicated records: %v", got)
	}
}

func TestMergeGapPrependsWholeBatch(t *testing.T) {
	s := newTestStore(t)

	mergeOnce(t, s, []domain.Transaction{
		txn("b", 1480, 48*time.Hour),
		txn("a", 1450, 72*time.Hour),
	})
	// Nothing in the new batch overlaps the stored head: older data must
	// survive behind the adopted batch.
	mergeOnce(t, s, []domain.Transaction{
		txn("e", 1520, 1*time.Hour),
		txn("d", 1510, 2*time.Hour),
	})

	if got := storedTxnIDs(t, s); !reflect.DeepEqual(got, []string{"e", "d", "b", "a"}) {
		t.Fatalf("stored %v want [e d b a]", got)
	}
}

func TestMergePrependsPrices(t *testing.T) {
	s := newTestStore(t)

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(6 * time.Hour)

	if err := s.Merge("stockx", first, styleID,
		map[domain.SizeKey]domain.Quote{sizeKey: {BestBid: 180, BestAsk: 210}}, nil); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.Merge("stockx", second, styleID,
		map[domain.SizeKey]domain.Quote{sizeKey: {BestBid: 185, BestAsk: 205}}, nil); err != nil {
		t.Fatalf("merge: %v", err)
	}

	doc, err := s.Get(styleID, sizeKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	prices := doc["stockx"].Prices
	if len(prices) != 2 {
		t.Fatalf("price points %d want 2", len(prices))
	}
	if *prices[0].BidPrice != 185 || *prices[1].BidPrice != 180 {
		t.Fatalf("not newest-first: %+v", prices)
	}
}

func TestMergeZeroSideStoredAsNull(t *testing.T) {
	s := newTestStore(t)

	// A listing venue only ever has a bid side.
	if err := s.Merge("du", time.Now(), styleID,
		map[domain.SizeKey]domain.Quote{sizeKey: {BestBid: 1500}}, nil); err != nil {
		t.Fatalf("merge: %v", err)
	}
	doc, err := s.Get(styleID, sizeKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	p := doc["du"].Prices[0]
	if p.BidPrice == nil || *p.BidPrice != 1500 {
		t.Fatalf("bid %v want 1500", p.BidPrice)
	}
	if p.AskPrice != nil {
		t.Fatalf("missing ask side must be null, got %v", *p.AskPrice)
	}
}

func TestOnDiskSchemaFieldNames(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, testLogger())

	mergeTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	err := s.Merge("du", mergeTime, styleID,
		map[domain.SizeKey]domain.Quote{sizeKey: {BestBid: 1500, BestAsk: 1600}},
		map[domain.SizeKey][]domain.Transaction{sizeKey: {txn("t1", 1480, time.Hour)}},
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "CP9654", "9.5.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var doc map[string]map[string][]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	venue, ok := doc["du"]
	if !ok {
		t.Fatalf("venue key missing: %s", raw)
	}
	price := venue["prices"][0]
	for _, field := range []string{"time", "bid_price", "ask_price"} {
		if _, ok := price[field]; !ok {
			t.Fatalf("price field %q missing: %v", field, price)
		}
	}
	transaction := venue["transactions"][0]
	for _, field := range []string{"price", "time", "id"} {
		if _, ok := transaction[field]; !ok {
			t.Fatalf("transaction field %q missing: %v", field, transaction)
		}
	}
}

func TestTransactionsMissingRecord(t *testing.T) {
	s := newTestStore(t)

	txns, err := s.Transactions(styleID, sizeKey, "du")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected empty history, got %v", txns)
	}
}

func TestGetStyle(t *testing.T) {
	s := newTestStore(t)

	for _, key := range []domain.SizeKey{"9.5", "10.0"} {
		if err := s.Merge("stockx", time.Now(), styleID,
			map[domain.SizeKey]domain.Quote{key: {BestBid: 100, BestAsk: 120}}, nil); err != nil {
			t.Fatalf("merge %s: %v", key, err)
		}
	}

	docs, err := s.GetStyle(styleID)
	if err != nil {
		t.Fatalf("get style: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs %d want 2", len(docs))
	}
	if _, ok := docs["9.5"]; !ok {
		t.Fatalf("size 9.5 missing: %v", docs)
	}
}
