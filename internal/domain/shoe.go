// Package domain defines the core entities of the sneaker arbitrage engine
// (style ids, shoe sizes, order books, quotes, matches, margins, scores) and
// the collaborator interfaces implemented by the infrastructure packages.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// StyleID is a normalized manufacturer identifier, the primary cross-venue
// join key. Always produce one through NormalizeStyleID.
type StyleID string

// NormalizeStyleID case-folds a raw manufacturer identifier and strips
// whitespace and punctuation so that "cp9654", "CP-9654" and " CP 9654 "
// all join on the same key. The function is idempotent.
func NormalizeStyleID(raw string) StyleID {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch r {
		case ' ', '-', '_', '.', '/':
			continue
		}
		b.WriteRune(r)
	}
	return StyleID(b.String())
}

// SizeClass names a size chart: a metric system optionally qualified by a
// brand/gender class, e.g. "us", "eu-nike-men", "eu-adidas-women".
type SizeClass string

// ClassUS is the reference class all venues are joined in.
const ClassUS SizeClass = "us"

// SizeKey is the canonical string form of a ShoeSize, used as a map and file
// key ("9.5", "5.0Y").
type SizeKey string

// ShoeSize is a size magnitude within some size class. Youth marks US youth
// ("Y") sizes, which occupy a separate scale from adult sizes of the same
// magnitude.
type ShoeSize struct {
	Magnitude float64
	Youth     bool
}

// ParseShoeSize accepts the raw size spellings the marketplaces emit:
// "36", "36.5", "9.5", "5Y", "5.0Y". Whole numbers gain a ".0"; anything
// not ending in .0 or .5 is rejected with ErrBadSize.
func ParseShoeSize(raw string) (ShoeSize, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ShoeSize{}, fmt.Errorf("parse shoe size %q: %w", raw, ErrBadSize)
	}
	youth := strings.HasSuffix(s, "Y")
	if youth {
		s = strings.TrimSuffix(s, "Y")
	}
	mag, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ShoeSize{}, fmt.Errorf("parse shoe size %q: %w", raw, ErrBadSize)
	}
	// Sizes come in half steps only.
	if mag <= 0 || mag*2 != float64(int(mag*2)) {
		return ShoeSize{}, fmt.Errorf("parse shoe size %q: %w", raw, ErrBadSize)
	}
	return ShoeSize{Magnitude: mag, Youth: youth}, nil
}

// String renders the size with one decimal place, matching the on-disk key
// format ("9.5", "36.0", "5.0Y").
func (s ShoeSize) String() string {
	out := strconv.FormatFloat(s.Magnitude, 'f', 1, 64)
	if s.Youth {
		out += "Y"
	}
	return out
}

// Key returns the canonical map/file key for the size.
func (s ShoeSize) Key() SizeKey { return SizeKey(s.String()) }
