// Package size implements brand/gender-aware bidirectional shoe size
// conversion and gender class inference over injected conversion charts.
package size

import (
	"fmt"
	"log/slog"

	"github.com/zhehaowang/sneaky/internal/domain"
)

type classPair struct {
	from domain.SizeClass
	to   domain.SizeClass
}

// Collision records an intentional duplicate mapping discovered while
// deriving an inverse table: two distinct source sizes mapped to the same
// target, so only the last inserted survives in the inverse.
type Collision struct {
	From    domain.SizeClass
	To      domain.SizeClass
	Target  float64
	Kept    float64
	Dropped float64
}

// Converter performs table lookups between size classes. Charts are defined
// one-directional; the reverse table is derived by inversion at construction
// time, keeping the last inserted mapping on duplicates.
type Converter struct {
	tables     map[classPair]map[float64]float64
	domains    map[domain.SizeClass][]float64 // source sizes per chart, insertion order
	collisions []Collision
	logger     *slog.Logger
}

// NewConverter builds a Converter from the given charts. Duplicate targets in
// a chart are preserved in the forward direction and resolved last-wins in
// the derived inverse; each resolution is recorded and logged rather than
// silently dropped.
func NewConverter(charts []Chart, logger *slog.Logger) *Converter {
	c := &Converter{
		tables:  make(map[classPair]map[float64]float64),
		domains: make(map[domain.SizeClass][]float64),
		logger:  logger.With(slog.String("component", "size_converter")),
	}

	for _, chart := range charts {
		forward := make(map[float64]float64, len(chart.Pairs))
		inverse := make(map[float64]float64, len(chart.Pairs))
		for _, p := range chart.Pairs {
			forward[p.From] = p.To
			if prev, dup := inverse[p.To]; dup {
				c.collisions = append(c.collisions, Collision{
					From:    chart.To,
					To:      chart.From,
					Target:  p.To,
					Kept:    p.From,
					Dropped: prev,
				})
				c.logger.Warn("duplicate inverse size mapping, keeping last",
					slog.String("from", string(chart.From)),
					slog.String("to", string(chart.To)),
					slog.Float64("target", p.To),
					slog.Float64("kept", p.From),
					slog.Float64("dropped", prev),
				)
			}
			inverse[p.To] = p.From
			c.domains[chart.From] = append(c.domains[chart.From], p.From)
		}
		c.tables[classPair{chart.From, chart.To}] = forward
		c.tables[classPair{chart.To, chart.From}] = inverse
	}
	return c
}

// Collisions returns the duplicate mappings resolved during inversion.
func (c *Converter) Collisions() []Collision { return c.collisions }

// Convert maps a size from one class to another. Identity conversions return
// the input unchanged. Returns ErrNoMapping when no table covers the class
// pair and ErrUnknownSize when the magnitude is absent from the table.
func (c *Converter) Convert(s domain.ShoeSize, from, to domain.SizeClass) (domain.ShoeSize, error) {
	if from == to {
		return s, nil
	}
	table, ok := c.tables[classPair{from, to}]
	if !ok {
		return domain.ShoeSize{}, fmt.Errorf("convert %s %s to %s: %w",
			s, from, to, domain.ErrNoMapping)
	}
	out, ok := table[s.Magnitude]
	if !ok {
		return domain.ShoeSize{}, fmt.Errorf("convert %s %s to %s: %w",
			s, from, to, domain.ErrUnknownSize)
	}
	return domain.ShoeSize{Magnitude: out, Youth: s.Youth}, nil
}
