package entities

// Notation is the aggregate rating figure for an active prompt.
//
// WeightedScore divides the group-weighted sum by the raw note count, not by
// the sum of weights. That denominator is the defined behavior: with mixed
// weights the figure is deliberately not a normalized weighted mean.
type Notation struct {
	PromptID      string
	WeightedScore float64
	Count         int
}
