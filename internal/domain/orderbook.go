package domain

import "fmt"

// RawOrder is one resting order as reported by a book-style venue. Ref is the
// venue's opaque order identifier, retained for traceability.
type RawOrder struct {
	Size     string
	Price    float64
	Quantity int
	Ref      string
}

// OrderLevel is one price rung of a book: the aggregate quantity resting at
// that price and the refs of the orders that contributed to it.
type OrderLevel struct {
	Price    float64
	Quantity int
	Refs     []string
}

// OrderBook holds the resting interest for one size of one model on one
// venue. Bids are sorted best-first (descending price), asks best-first
// (ascending price); no two levels on a side share a price.
type OrderBook struct {
	Bids []OrderLevel
	Asks []OrderLevel
}

// Validate checks the side invariants: strict price monotonicity and unique
// prices. A violation indicates corrupted upstream data and is fatal to this
// book only.
func (b *OrderBook) Validate() error {
	for i := 1; i < len(b.Bids); i++ {
		if b.Bids[i].Price >= b.Bids[i-1].Price {
			return fmt.Errorf("bid level %d price %.2f >= %.2f: %w",
				i, b.Bids[i].Price, b.Bids[i-1].Price, ErrCorruptBook)
		}
	}
	for i := 1; i < len(b.Asks); i++ {
		if b.Asks[i].Price <= b.Asks[i-1].Price {
			return fmt.Errorf("ask level %d price %.2f <= %.2f: %w",
				i, b.Asks[i].Price, b.Asks[i-1].Price, ErrCorruptBook)
		}
	}
	return nil
}

// Quote is the distilled top-of-book view persisted per venue and size. A
// zero BestBid or BestAsk means no resting interest on that side; an eligible
// zero-price order cannot occur.
type Quote struct {
	BestBid      float64
	BestAsk      float64
	VolumeRecent int
}
