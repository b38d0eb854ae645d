package size

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// InferGenderClass picks the chart class whose size set covers every observed
// size. Needed for the venue that publishes size charts without gender
// metadata. When several classes qualify the most restrictive (fewest sizes)
// wins, with a logged ambiguity; class name breaks exact ties so the choice
// is deterministic.
func (c *Converter) InferGenderClass(observed []domain.ShoeSize) (domain.SizeClass, error) {
	if len(observed) == 0 {
		return "", fmt.Errorf("infer gender class: no sizes observed: %w", domain.ErrNoGenderMatch)
	}

	var candidates []domain.SizeClass
	for class, sizes := range c.domains {
		set := make(map[float64]bool, len(sizes))
		for _, m := range sizes {
			set[m] = true
		}
		covered := true
		for _, s := range observed {
			if !set[s.Magnitude] {
				covered = false
				break
			}
		}
		if covered {
			candidates = append(candidates, class)
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("infer gender class over %d sizes: %w",
			len(observed), domain.ErrNoGenderMatch)
	}

	sort.Slice(candidates, func(i, j int) bool {
		li, lj := len(c.domains[candidates[i]]), len(c.domains[candidates[j]])
		if li != lj {
			return li < lj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > 1 {
		others := make([]string, 0, len(candidates)-1)
		for _, cand := range candidates[1:] {
			others = append(others, string(cand))
		}
		c.logger.Warn("ambiguous gender class inference, choosing most restrictive",
			slog.String("chosen", string(candidates[0])),
			slog.Any("also_qualified", others),
		)
	}
	return candidates[0], nil
}
