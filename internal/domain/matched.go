package domain

// MatchedItem is a (style, size) pair for which at least two venues
// contributed a record, keyed by US size after conversion.
type MatchedItem struct {
	StyleID StyleID
	Size    ShoeSize
	Venues  map[Venue]VenueRecord
}

// Key returns the deterministic identity of the match, used as a tie-break
// in ranking output.
func (m MatchedItem) Key() string {
	return string(m.StyleID) + "/" + string(m.Size.Key())
}

// MarginResult carries the fee-adjusted margins for one MatchedItem. It is
// computed fresh per run and never persisted apart from its item.
type MarginResult struct {
	Eligible           bool
	CrossingMargin     float64
	CrossingMarginRate float64
	AddingMargin       float64
	AddingMarginRate   float64
	// ChosenAction names the sell venue that produced the best crossing
	// margin, e.g. "sell:du".
	ChosenAction string
}

// ScoredItem is a margin-annotated match with its liquidity-adjusted rank
// score attached.
type ScoredItem struct {
	Item   MatchedItem
	Margin MarginResult

	Score           float64
	EffectiveVolume float64
	// VolumeApproximated is set when no transaction history existed and the
	// per-size demand fallback supplied the volume figure.
	VolumeApproximated bool
}
