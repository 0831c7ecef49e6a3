package utils

import (
	"math"
)

// PriorityBreakdown is the derived scoring record attached to issue payloads.
// It is recomputed on every read and never persisted.
type PriorityBreakdown struct {
	TotalPriority      float64 `json:"total_priority"`      // 0-10
	NormalizedPriority float64 `json:"normalized_priority"` // 0-5, for display
	UserRatingPoints   float64 `json:"user_rating_points"`  // 0-5
	RepostPoints       float64 `json:"repost_points"`       // 0-5
	RepostCount        int     `json:"repost_count"`
	ImportanceRating   int     `json:"importance_rating"`
}

// CalculatePriority blends the reporter's own importance rating with the
// repost count normalized against the busiest issue in the corpus.
//
// - up to 5 points from the reporter's rating (0-5)
// - up to 5 points from reposts: (repostCount / maxReposts) * 5, capped at 5
//
// Callers validate the rating range at the boundary, but the function clamps
// both ends anyway so a bad caller can never produce an out-of-range score.
// maxReposts below 1 is treated as 1 to keep the division defined.
func CalculatePriority(importanceRating, repostCount, maxReposts int) PriorityBreakdown {
	rating := importanceRating
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	if maxReposts < 1 {
		maxReposts = 1
	}

	userRatingPoints := float64(rating)

	repostPoints := float64(repostCount) / float64(maxReposts) * 5
	if repostPoints > 5 {
		repostPoints = 5
	}

	totalPriority := userRatingPoints + repostPoints
	normalizedPriority := totalPriority / 2

	return PriorityBreakdown{
		TotalPriority:      round2(totalPriority),
		NormalizedPriority: round2(normalizedPriority),
		UserRatingPoints:   round2(userRatingPoints),
		RepostPoints:       round2(repostPoints),
		RepostCount:        repostCount,
		ImportanceRating:   importanceRating,
	}
}

// round2 rounds to 2 decimal places, half up.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
