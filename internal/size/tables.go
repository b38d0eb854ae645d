package size

import "github.com/zhehaowang/sneaky/internal/domain"

// Size class identifiers used by the default charts.
const (
	ClassNikeMenEU     domain.SizeClass = "eu-nike-men"
	ClassAdidasMenEU   domain.SizeClass = "eu-adidas-men"
	ClassAdidasWomenEU domain.SizeClass = "eu-adidas-women"
	ClassChineseMenCN  domain.SizeClass = "cn-men"
)

// Mapping is a single size equivalence within a chart.
type Mapping struct {
	From float64
	To   float64
}

// Chart is a one-directional conversion table between two size classes.
// Pairs are kept in insertion order: when the derived inverse hits duplicate
// targets, the last inserted mapping wins.
type Chart struct {
	From  domain.SizeClass
	To    domain.SizeClass
	Pairs []Mapping
}

// DefaultCharts returns the built-in brand/gender conversion charts. Sources
// disagree between brands, so Nike and adidas carry separate charts.
func DefaultCharts() []Chart {
	return []Chart{
		{
			From: ClassNikeMenEU,
			To:   domain.ClassUS,
			Pairs: []Mapping{
				{35.5, 3.5}, {36.0, 4.0}, {36.5, 4.5}, {37.5, 5.0},
				{38.0, 5.5}, {38.5, 6.0}, {39.0, 6.5}, {40.0, 7.0},
				{40.5, 7.5}, {41.0, 8.0}, {42.0, 8.5}, {42.5, 9.0},
				{43.0, 9.5}, {44.0, 10.0}, {44.5, 10.5}, {45.0, 11.0},
				{45.5, 11.5}, {46.0, 12.0}, {46.5, 12.5}, {47.5, 13.0},
				{48.0, 13.5}, {48.5, 14.0},
			},
		},
		{
			From: ClassAdidasMenEU,
			To:   domain.ClassUS,
			Pairs: []Mapping{
				{36.0, 4.0}, {36.5, 4.5},
				// mind the duplicate: both map to US 5.0
				{37.0, 5.0}, {37.5, 5.0},
				{38.0, 5.5}, {38.5, 6.0}, {39.0, 6.5}, {40.0, 7.0},
				{40.5, 7.5}, {41.0, 8.0}, {42.0, 8.5}, {42.5, 9.0},
				{43.0, 9.5}, {44.0, 10.0}, {44.5, 10.5}, {45.0, 11.0},
				{46.0, 11.5}, {46.5, 12.0}, {47.0, 12.5},
				{48.0, 13.0}, {48.5, 13.5}, {49.0, 14.0},
			},
		},
		{
			From: ClassAdidasWomenEU,
			To:   domain.ClassUS,
			Pairs: []Mapping{
				{35.5, 3.5}, {36.0, 4.0}, {36.5, 4.5}, {37.5, 5.0},
				{38.0, 5.5}, {38.5, 6.0}, {39.0, 6.5}, {40.0, 7.0},
			},
		},
		{
			From: ClassChineseMenCN,
			To:   domain.ClassUS,
			Pairs: []Mapping{
				{35.0, 3.5}, {36.0, 4.0}, {37.0, 4.5}, {38.0, 5.0},
				{39.0, 5.5}, {39.5, 6.0}, {40.0, 6.5}, {41.0, 7.0},
				{41.5, 7.5}, {42.0, 8.0}, {43.0, 8.5}, {43.5, 9.0},
				{44.0, 9.5}, {44.5, 10.0}, {45.0, 10.5}, {46.0, 11.0},
				{46.5, 11.5}, {47.0, 12.0}, {47.5, 12.5},
			},
		},
	}
}
