package score

import "github.com/zhehaowang/sneaky/internal/domain"

// Naive scores an item by its crossing margin rate alone, with zero implied
// volume. Useful as a baseline and when no history has accumulated yet.
type Naive struct{}

// NewNaive creates a Naive scorer.
func NewNaive() *Naive { return &Naive{} }

// Name returns the scorer identifier.
func (n *Naive) Name() string { return "naive" }

// Score returns the crossing margin rate unchanged.
func (n *Naive) Score(item domain.MatchedItem, margin domain.MarginResult) (domain.ScoredItem, error) {
	return domain.ScoredItem{
		Item:   item,
		Margin: margin,
		Score:  margin.CrossingMarginRate,
	}, nil
}
