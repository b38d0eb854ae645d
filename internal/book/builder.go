// Package book aggregates raw bid/ask order lists into sorted, size-keyed
// price levels and distills them into top-of-book quotes.
package book

import (
	"log/slog"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// Builder turns raw venue order dumps into per-size order books. Malformed
// orders are counted and skipped, never fatal.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logger.With(slog.String("component", "book_builder"))}
}

// Build groups the raw orders by size and assembles each side sorted
// best-price-first: descending for bids, ascending for asks. Orders at an
// existing level's price merge into it (quantity summed, ref appended);
// otherwise a new level is inserted at its sorted position. Insertion is
// linear per order, which is fine at the tens-of-orders-per-size scale the
// venues produce. The second return value is the count of skipped malformed
// orders.
func (b *Builder) Build(bids, asks []domain.RawOrder) (map[domain.SizeKey]*domain.OrderBook, int) {
	books := make(map[domain.SizeKey]*domain.OrderBook)
	skipped := 0

	add := func(o domain.RawOrder, isBid bool) {
		size, err := domain.ParseShoeSize(o.Size)
		if err != nil || o.Price <= 0 {
			skipped++
			b.logger.Debug("skipping malformed raw order",
				slog.String("size", o.Size),
				slog.Float64("price", o.Price),
				slog.String("ref", o.Ref),
			)
			return
		}
		qty := o.Quantity
		if qty <= 0 {
			qty = 1
		}
		key := size.Key()
		bk, ok := books[key]
		if !ok {
			bk = &domain.OrderBook{}
			books[key] = bk
		}
		if isBid {
			bk.Bids = insertLevel(bk.Bids, o.Price, qty, o.Ref, func(newPx, atPx float64) bool {
				return newPx > atPx // bids: higher is better
			})
		} else {
			bk.Asks = insertLevel(bk.Asks, o.Price, qty, o.Ref, func(newPx, atPx float64) bool {
				return newPx < atPx // asks: lower is better
			})
		}
	}

	for _, o := range bids {
		add(o, true)
	}
	for _, o := range asks {
		add(o, false)
	}
	return books, skipped
}

// insertLevel merges the order into an equal-priced level or inserts a new
// level at its sorted position, best price first.
func insertLevel(side []domain.OrderLevel, price float64, qty int, ref string, better func(newPx, atPx float64) bool) []domain.OrderLevel {
	for i := range side {
		if side[i].Price == price {
			side[i].Quantity += qty
			side[i].Refs = append(side[i].Refs, ref)
			return side
		}
		if better(price, side[i].Price) {
			side = append(side, domain.OrderLevel{})
			copy(side[i+1:], side[i:])
			side[i] = domain.OrderLevel{Price: price, Quantity: qty, Refs: []string{ref}}
			return side
		}
	}
	return append(side, domain.OrderLevel{Price: price, Quantity: qty, Refs: []string{ref}})
}

// Distill extracts the top-of-book quote. A missing side yields 0, which
// signals "no resting interest"; an eligible zero-price order cannot occur.
func Distill(bk *domain.OrderBook) domain.Quote {
	var q domain.Quote
	if len(bk.Bids) > 0 {
		q.BestBid = bk.Bids[0].Price
	}
	if len(bk.Asks) > 0 {
		q.BestAsk = bk.Asks[0].Price
	}
	return q
}
