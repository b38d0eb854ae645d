package domain

// PricePoint is one top-of-book observation in a size's stored price history.
// Field names and newest-first ordering are a durable contract consumed by
// external analysis tools; do not rename.
type PricePoint struct {
	Time     string   `json:"time"`
	BidPrice *float64 `json:"bid_price"`
	AskPrice *float64 `json:"ask_price"`
}

// TransactionPoint is one historical sale in a size's stored history.
type TransactionPoint struct {
	Price float64 `json:"price"`
	Time  string  `json:"time"`
	ID    string  `json:"id"`
}

// VenueSeries is one venue's stored history for a (style, size): price
// snapshots and sales, both newest-first.
type VenueSeries struct {
	Prices       []PricePoint       `json:"prices"`
	Transactions []TransactionPoint `json:"transactions"`
}

// SizeDocument is the on-disk record for one (style_id, size): a venue-keyed
// collection of series. It is the only long-lived entity in the system.
type SizeDocument map[Venue]*VenueSeries
