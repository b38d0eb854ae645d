package domain

// Venue identifies a marketplace ("stockx", "du", "flightclub").
type Venue string

// VenueRecord is one venue's contribution to a (style, size) pair: either a
// distilled top-of-book quote (book venues) or a single list price (listing
// venues). Prices are in the venue's own currency; conversion to the
// reference currency happens inside the fee schedule.
type VenueRecord struct {
	Venue     Venue
	Quote     *Quote
	ListPrice float64
	Currency  string
	// Transactions are the recent sales observed for this size in the same
	// fetch, newest first. Only some venues publish them.
	Transactions []Transaction
}

// StyleCatalog is one venue's view of one shoe model: its per-size records
// keyed by the venue's native size spelling.
type StyleCatalog struct {
	StyleID StyleID
	Title   string
	Sizes   map[SizeKey]VenueRecord
}

// Catalog is one venue's full snapshot: style id to per-size records.
type Catalog map[StyleID]StyleCatalog

// VenueTraits describes how a venue's catalog is interpreted: the size system
// its charts use and whether sizes need brand/gender inference before
// conversion to US.
type VenueTraits struct {
	Venue      Venue
	SizeSystem string // "us" or "eu"
	Currency   string
	// SellSide marks venues the engine may sell through; the buy side venue
	// is configured separately on the engine.
	SellSide bool
}
