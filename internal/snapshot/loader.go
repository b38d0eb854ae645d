// Package snapshot deserializes the per-venue catalog documents written by
// the fetch layer into domain catalogs, building and distilling order books
// for book-style venues along the way.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zhehaowang/sneaky/internal/book"
	"github.com/zhehaowang/sneaky/internal/domain"
)

// rawOrderJSON is one resting order in a book venue snapshot.
type rawOrderJSON struct {
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Ref      string  `json:"ref"`
}

// listingJSON is one per-size list price in a listing venue snapshot.
type listingJSON struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// saleJSON is one recent sale in a snapshot.
type saleJSON struct {
	Size         string  `json:"size"`
	Price        float64 `json:"price"`
	Time         string  `json:"time"`
	Counterparty string  `json:"counterparty"`
}

// styleJSON is one shoe model in a snapshot. Book venues populate bids/asks,
// listing venues populate listings.
type styleJSON struct {
	StyleID      string         `json:"style_id"`
	Title        string         `json:"title"`
	Bids         []rawOrderJSON `json:"bids"`
	Asks         []rawOrderJSON `json:"asks"`
	Listings     []listingJSON  `json:"listings"`
	Transactions []saleJSON     `json:"transactions"`
	// VolumeRecent is the venue-reported recent sale count per size.
	VolumeRecent map[string]int `json:"volume_recent"`
}

// document is the on-disk snapshot schema produced by the fetch layer.
type document struct {
	Venue     string      `json:"venue"`
	FetchedAt time.Time   `json:"fetched_at"`
	Styles    []styleJSON `json:"styles"`
}

// Loader turns snapshot documents into domain catalogs.
type Loader struct {
	traits  map[domain.Venue]domain.VenueTraits
	builder *book.Builder
	logger  *slog.Logger
}

// NewLoader creates a Loader for venues described by traits.
func NewLoader(traits map[domain.Venue]domain.VenueTraits, logger *slog.Logger) *Loader {
	return &Loader{
		traits:  traits,
		builder: book.NewBuilder(logger),
		logger:  logger.With(slog.String("component", "snapshot_loader")),
	}
}

// Result is one loaded venue snapshot.
type Result struct {
	Venue     domain.Venue
	FetchedAt time.Time
	Catalog   domain.Catalog
	// SkippedOrders counts malformed raw orders dropped during book builds;
	// SkippedBooks counts books discarded for invariant violations.
	SkippedOrders int
	SkippedBooks  int
}

// Load reads and converts one snapshot file. Data-quality problems are
// skipped and counted; only an unreadable or structurally invalid document
// is an error.
func (l *Loader) Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}

	venue := domain.Venue(doc.Venue)
	traits, ok := l.traits[venue]
	if !ok {
		return nil, fmt.Errorf("snapshot: %s: venue %q: %w", path, doc.Venue, domain.ErrUnknownVenue)
	}

	res := &Result{
		Venue:     venue,
		FetchedAt: doc.FetchedAt,
		Catalog:   make(domain.Catalog, len(doc.Styles)),
	}
	for _, style := range doc.Styles {
		styleID := domain.NormalizeStyleID(style.StyleID)
		if styleID == "" {
			l.logger.Warn("style without id skipped", slog.String("title", style.Title))
			continue
		}
		sc := domain.StyleCatalog{
			StyleID: styleID,
			Title:   style.Title,
			Sizes:   make(map[domain.SizeKey]domain.VenueRecord),
		}

		if len(style.Bids) > 0 || len(style.Asks) > 0 {
			l.loadBooks(venue, traits, style, &sc, res)
		}
		l.loadListings(venue, traits, style, &sc)
		l.loadSales(venue, style, &sc)

		if len(sc.Sizes) > 0 {
			res.Catalog[styleID] = sc
		}
	}
	return res, nil
}

// loadBooks builds per-size books from raw orders and distills them into
// quotes. A book that fails validation indicates corrupted upstream data and
// is dropped on its own; the rest of the style survives.
func (l *Loader) loadBooks(venue domain.Venue, traits domain.VenueTraits, style styleJSON, sc *domain.StyleCatalog, res *Result) {
	bids := make([]domain.RawOrder, len(style.Bids))
	for i, o := range style.Bids {
		bids[i] = domain.RawOrder{Size: o.Size, Price: o.Price, Quantity: o.Quantity, Ref: o.Ref}
	}
	asks := make([]domain.RawOrder, len(style.Asks))
	for i, o := range style.Asks {
		asks[i] = domain.RawOrder{Size: o.Size, Price: o.Price, Quantity: o.Quantity, Ref: o.Ref}
	}

	books, skipped := l.builder.Build(bids, asks)
	res.SkippedOrders += skipped

	for size, bk := range books {
		if err := bk.Validate(); err != nil {
			res.SkippedBooks++
			l.logger.Warn("corrupt book dropped",
				slog.String("venue", string(venue)),
				slog.String("style_id", string(sc.StyleID)),
				slog.String("size", string(size)),
				slog.String("error", err.Error()),
			)
			continue
		}
		quote := book.Distill(bk)
		quote.VolumeRecent = style.VolumeRecent[string(size)]
		sc.Sizes[size] = domain.VenueRecord{
			Venue:    venue,
			Currency: traits.Currency,
			Quote:    &quote,
		}
	}
}

func (l *Loader) loadListings(venue domain.Venue, traits domain.VenueTraits, style styleJSON, sc *domain.StyleCatalog) {
	for _, listing := range style.Listings {
		size, err := domain.ParseShoeSize(listing.Size)
		if err != nil || listing.Price <= 0 {
			l.logger.Warn("malformed listing skipped",
				slog.String("venue", string(venue)),
				slog.String("style_id", string(sc.StyleID)),
				slog.String("size", listing.Size),
				slog.Float64("price", listing.Price),
			)
			continue
		}
		sc.Sizes[size.Key()] = domain.VenueRecord{
			Venue:     venue,
			Currency:  traits.Currency,
			ListPrice: listing.Price,
		}
	}
}

// loadSales attaches recent sales to their size records for the time-series
// merge. Sale identity is the content hash of (price, size, counterparty).
func (l *Loader) loadSales(venue domain.Venue, style styleJSON, sc *domain.StyleCatalog) {
	for _, sale := range style.Transactions {
		size, err := domain.ParseShoeSize(sale.Size)
		if err != nil || sale.Price <= 0 {
			l.logger.Warn("malformed sale skipped",
				slog.String("venue", string(venue)),
				slog.String("style_id", string(sc.StyleID)),
				slog.String("size", sale.Size),
			)
			continue
		}
		when, err := time.Parse(time.RFC3339Nano, sale.Time)
		if err != nil {
			if when, err = time.Parse(time.RFC3339, sale.Time); err != nil {
				l.logger.Warn("malformed sale time skipped",
					slog.String("style_id", string(sc.StyleID)),
					slog.String("time", sale.Time),
				)
				continue
			}
		}

		rec, ok := sc.Sizes[size.Key()]
		if !ok {
			// A sale for a size with no current listing still matters for
			// velocity; carry it on a price-less record.
			rec = domain.VenueRecord{Venue: venue}
		}
		rec.Transactions = append(rec.Transactions, domain.Transaction{
			Size:  size,
			Price: sale.Price,
			Time:  when,
			ID: domain.TransactionID(
				fmt.Sprintf("%.2f", sale.Price), size.String(), sale.Counterparty),
		})
		sc.Sizes[size.Key()] = rec
	}
}
