package srs

import "time"

// Stats summarizes the scheduling state of a collection of cards, either
// one folder or a whole account. Aggregates are computed fresh from the
// cards on every call; nothing is cached.
type Stats struct {
	TotalCards     int     `json:"totalCards"`
	DueToday       int     `json:"dueToday"`
	DueThisWeek    int     `json:"dueThisWeek"`
	MasteredCards  int     `json:"masteredCards"`
	NewCards       int     `json:"newCards"`
	AverageEase    float64 `json:"averageEase"`
	TotalReviews   int     `json:"totalReviews"`
	CorrectReviews int     `json:"correctReviews"`
	SuccessRate    float64 `json:"successRate"`
}

// Aggregate rolls up per-card counters into collection-level metrics.
// An empty collection yields the zero Stats: in particular SuccessRate is 0
// rather than a division by zero, and AverageEase is 0 because there is no
// card to average over.
func Aggregate(cards []CardState, now time.Time) Stats {
	stats := Stats{TotalCards: len(cards)}

	var easeSum float64
	for _, c := range cards {
		if IsDue(c, now) {
			stats.DueToday++
		}
		if IsDueWithinWeek(c, now) {
			stats.DueThisWeek++
		}
		if IsMastered(c.Repetitions, c.EaseFactor) {
			stats.MasteredCards++
		}
		if IsNew(c) {
			stats.NewCards++
		}
		easeSum += c.EaseFactor
		stats.TotalReviews += c.TotalReviews
		stats.CorrectReviews += c.CorrectReviews
	}

	if len(cards) > 0 {
		stats.AverageEase = easeSum / float64(len(cards))
	}
	if stats.TotalReviews > 0 {
		stats.SuccessRate = 100 * float64(stats.CorrectReviews) / float64(stats.TotalReviews)
	}
	return stats
}
