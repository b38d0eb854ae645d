// Package match joins per-venue catalogs on (normalized style id, US size)
// and emits matched items wherever at least two venues contribute.
package match

import (
	"log/slog"

	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/size"
)

// Key is the cross-venue join key.
type Key struct {
	StyleID domain.StyleID
	Size    domain.SizeKey
}

// Stats reports the matcher's filtering behavior so silent data loss stays
// observable.
type Stats struct {
	TotalPairs     int // (style, size) pairs seen across all venues
	StylesShared   int // styles present on at least two venues
	MatchedPairs   int // (style, size) pairs with at least two venues
	SkippedSizes   int // sizes dropped due to conversion failure
	InferFailures  int // styles whose gender class could not be inferred
}

// Matcher joins venue catalogs. Sizes from non-US venues are converted to US
// using the per-item inferred gender class before being used as join keys;
// join equality is exact after normalization, never fuzzy.
type Matcher struct {
	conv   *size.Converter
	traits map[domain.Venue]domain.VenueTraits
	logger *slog.Logger
}

// NewMatcher creates a Matcher over the given venue traits.
func NewMatcher(conv *size.Converter, traits map[domain.Venue]domain.VenueTraits, logger *slog.Logger) *Matcher {
	return &Matcher{
		conv:   conv,
		traits: traits,
		logger: logger.With(slog.String("component", "matcher")),
	}
}

// Match produces one MatchedItem per (style, US size) with contributions from
// two or more venues. Conversion and inference failures exclude the affected
// sizes or styles from matching but never abort the run.
func (m *Matcher) Match(catalogs map[domain.Venue]domain.Catalog) (map[Key]domain.MatchedItem, Stats) {
	var stats Stats

	// candidate (style, us size) -> contributing venue records
	candidates := make(map[Key]map[domain.Venue]domain.VenueRecord)
	styleVenues := make(map[domain.StyleID]map[domain.Venue]bool)

	for venue, catalog := range catalogs {
		traits := m.traits[venue]
		for styleID, style := range catalog {
			stats.TotalPairs += len(style.Sizes)

			var class domain.SizeClass = domain.ClassUS
			if traits.SizeSystem != "" && traits.SizeSystem != string(domain.ClassUS) {
				// Gender inference runs over adult sizes only; youth sizes
				// live on a separate scale the brand charts do not cover.
				observed := make([]domain.ShoeSize, 0, len(style.Sizes))
				for key := range style.Sizes {
					s, err := domain.ParseShoeSize(string(key))
					if err != nil || s.Youth {
						continue
					}
					observed = append(observed, s)
				}
				inferred, err := m.conv.InferGenderClass(observed)
				if err != nil {
					stats.InferFailures++
					stats.SkippedSizes += len(style.Sizes)
					m.logger.Warn("gender class inference failed, style excluded",
						slog.String("venue", string(venue)),
						slog.String("style_id", string(styleID)),
						slog.String("error", err.Error()),
					)
					continue
				}
				class = inferred
			}

			for key, record := range style.Sizes {
				s, err := domain.ParseShoeSize(string(key))
				if err != nil {
					stats.SkippedSizes++
					m.logger.Warn("unparseable size excluded from matching",
						slog.String("venue", string(venue)),
						slog.String("style_id", string(styleID)),
						slog.String("size", string(key)),
					)
					continue
				}
				usSize, err := m.conv.Convert(s, class, domain.ClassUS)
				if err != nil {
					stats.SkippedSizes++
					m.logger.Warn("size conversion failed, size excluded from matching",
						slog.String("venue", string(venue)),
						slog.String("style_id", string(styleID)),
						slog.String("size", string(key)),
						slog.String("class", string(class)),
						slog.String("error", err.Error()),
					)
					continue
				}

				k := Key{StyleID: styleID, Size: usSize.Key()}
				if candidates[k] == nil {
					candidates[k] = make(map[domain.Venue]domain.VenueRecord)
				}
				candidates[k][venue] = record
				if styleVenues[styleID] == nil {
					styleVenues[styleID] = make(map[domain.Venue]bool)
				}
				styleVenues[styleID][venue] = true
			}
		}
	}

	matched := make(map[Key]domain.MatchedItem)
	for k, venues := range candidates {
		if len(venues) < 2 {
			continue
		}
		s, err := domain.ParseShoeSize(string(k.Size))
		if err != nil {
			continue // cannot happen: keys come from parsed sizes
		}
		matched[k] = domain.MatchedItem{
			StyleID: k.StyleID,
			Size:    s,
			Venues:  venues,
		}
	}
	stats.MatchedPairs = len(matched)

	for _, venues := range styleVenues {
		if len(venues) >= 2 {
			stats.StylesShared++
		}
	}

	m.logger.Info("cross-venue matching complete",
		slog.Int("total_pairs", stats.TotalPairs),
		slog.Int("styles_shared", stats.StylesShared),
		slog.Int("matched_pairs", stats.MatchedPairs),
		slog.Int("skipped_sizes", stats.SkippedSizes),
	)
	return matched, stats
}
