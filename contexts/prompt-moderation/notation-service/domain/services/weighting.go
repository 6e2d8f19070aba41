// Package services holds the pure rating-weight rules, independent of
// storage so they unit-test without a database.
package services

// Rating weights by group affinity between rater and prompt creator.
const (
	SameGroupWeight  = 0.6
	OtherGroupWeight = 0.4
)

// NoteWeight returns the multiplier applied to a note's value. The higher
// weight requires both group ids non-null and equal.
func NoteWeight(raterGroup, creatorGroup *string) float64 {
	if raterGroup != nil && creatorGroup != nil && *raterGroup == *creatorGroup {
		return SameGroupWeight
	}
	return OtherGroupWeight
}
