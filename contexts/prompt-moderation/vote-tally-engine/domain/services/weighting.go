package services

import "strings"

// ActivationThreshold is the fixed point total at which a recalled prompt is
// reinstated to active.
const ActivationThreshold = 6

// VotePoints weighs a single vote: 2 points when the voter shares the
// creator's non-null group, else 1. Pure function, independent of storage.
func VotePoints(voterGroup, creatorGroup *string) int {
	if sameGroup(voterGroup, creatorGroup) {
		return 2
	}
	return 1
}

// PointsNeeded reports the remaining distance to the threshold, never
// negative.
func PointsNeeded(total int) int {
	if total >= ActivationThreshold {
		return 0
	}
	return ActivationThreshold - total
}

// Eligible reports whether the total meets the activation threshold.
func Eligible(total int) bool {
	return total >= ActivationThreshold
}

func sameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	left := strings.TrimSpace(*a)
	right := strings.TrimSpace(*b)
	return left != "" && left == right
}
