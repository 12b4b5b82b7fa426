package game

import "github.com/riskibarqy/statline/internal/domain/stat"

// AggregationPolicy decides how a container combines its own records with the
// totals of its children.
type AggregationPolicy string

const (
	// AggregationAdditive sums direct records and every child.
	AggregationAdditive AggregationPolicy = "additive"
	// AggregationDirectPrecedence uses only direct records when any exist and
	// falls back to the children otherwise, so a game tracked both ways is
	// not double counted.
	AggregationDirectPrecedence AggregationPolicy = "direct_precedence"
)

const (
	// GamePolicy is applied to Game totals.
	// TODO: confirm with product whether direct precedence is intended or a
	// double-count workaround before other read models depend on it.
	GamePolicy = AggregationDirectPrecedence
	// PersonPolicy is applied to PersonGameStats totals.
	PersonPolicy = AggregationAdditive
)

// Combine merges a direct value with child values under the policy. hasDirect
// reports whether the direct scope holds any records at all.
func (p AggregationPolicy) Combine(hasDirect bool, direct int, children []int) int {
	childTotal := 0
	for _, v := range children {
		childTotal += v
	}

	switch p {
	case AggregationDirectPrecedence:
		if hasDirect {
			return direct
		}
		return childTotal
	default:
		return direct + childTotal
	}
}

// Points totals points for a direct book and child point totals.
func (p AggregationPolicy) Points(direct stat.Book, children []int) int {
	return p.Combine(!direct.IsEmpty(), direct.Points(), children)
}
