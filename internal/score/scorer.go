// Package score ranks margin-annotated matches by an
// expected-liquidity-adjusted score. Two interchangeable strategies exist:
// "naive" (margin rate only) and "multi" (margin rate damped by transaction
// velocity and price-bucket discounts).
package score

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// Scorer turns one matched, margin-annotated item into a ScoredItem.
type Scorer interface {
	Name() string
	Score(item domain.MatchedItem, margin domain.MarginResult) (domain.ScoredItem, error)
}

// Registry holds named scorers for selection by config.
type Registry struct {
	scorers map[string]Scorer
	mu      sync.RWMutex
}

// NewRegistry returns an empty registry. Call Register to add scorers.
func NewRegistry() *Registry {
	return &Registry{scorers: make(map[string]Scorer)}
}

// Register adds a scorer under its name.
func (r *Registry) Register(s Scorer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorers[s.Name()] = s
}

// Get returns the scorer by name, or an error if not found.
func (r *Registry) Get(name string) (Scorer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scorers[name]
	if !ok {
		return nil, fmt.Errorf("scorer %q not found", name)
	}
	return s, nil
}

// List returns all registered scorer names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scorers))
	for n := range r.scorers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Rank orders scored items for output: stable descending by score, ties
// broken by (style_id, size) so the ordering is reproducible in tests.
func Rank(items []domain.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Item.Key() < items[j].Item.Key()
	})
}
