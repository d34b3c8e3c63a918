package srs

import (
	"fmt"
	"math"
	"time"
)

// CardState is the slice of a card the selector and aggregator operate on.
// It carries no identity or content, only scheduling state.
type CardState struct {
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	NextReview     time.Time
	TotalReviews   int
	CorrectReviews int
}

// DueSets partitions a collection of cards by due-ness relative to now.
// DueToday is a subset of DueThisWeek by construction.
type DueSets struct {
	DueToday    []CardState
	DueThisWeek []CardState
	Overdue     []CardState
}

// SelectDue filters cards into due-today, due-this-week and overdue sets.
func SelectDue(cards []CardState, now time.Time) DueSets {
	var sets DueSets
	for _, c := range cards {
		if IsDue(c, now) {
			sets.DueToday = append(sets.DueToday, c)
		}
		if IsDueWithinWeek(c, now) {
			sets.DueThisWeek = append(sets.DueThisWeek, c)
		}
		if OverdueDays(now, c.NextReview) > 0 {
			sets.Overdue = append(sets.Overdue, c)
		}
	}
	return sets
}

// IsDue reports whether the card's next review is at or before now.
func IsDue(c CardState, now time.Time) bool {
	return !c.NextReview.After(now)
}

// IsDueWithinWeek reports whether the card's next review falls within the
// next 7 days (including cards already due).
func IsDueWithinWeek(c CardState, now time.Time) bool {
	return !c.NextReview.After(now.AddDate(0, 0, 7))
}

// IsNew reports whether the card has never been reviewed.
func IsNew(c CardState) bool {
	return c.TotalReviews == 0
}

// IsMastered reports whether a card counts as mastered: at least 3
// consecutive successful repetitions and an ease factor of 2.5 or higher.
// Mastery is independent of due-ness.
func IsMastered(repetitions int, easeFactor float64) bool {
	return repetitions >= 3 && easeFactor >= DefaultEase
}

// DaysUntil returns the number of whole calendar days from now until next.
// Both instants are normalized to the start of their day, so the result is
// negative when next is in the past and zero when both fall on the same day.
func DaysUntil(now, next time.Time) int {
	from := startOfDay(now)
	to := startOfDay(next)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// OverdueDays returns how many whole days past due the next review is,
// or 0 if it is not overdue.
func OverdueDays(now, next time.Time) int {
	if days := DaysUntil(now, next); days < 0 {
		return -days
	}
	return 0
}

// Breakdown is the new/learning/mastered composition used by dashboards.
// The three counts partition the collection: learning is defined as
// total - mastered - new rather than by an independent predicate.
type Breakdown struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Mastered int `json:"mastered"`
}

// Compose computes the composition breakdown. A card can never be both new
// and mastered, because mastery requires repetitions >= 3 and repetitions
// only grow through reviews; Compose checks that invariant instead of
// assuming it, so a corrupt state cannot produce a negative learning count.
func Compose(cards []CardState) (Breakdown, error) {
	var b Breakdown
	for _, c := range cards {
		mastered := IsMastered(c.Repetitions, c.EaseFactor)
		if mastered && IsNew(c) {
			return Breakdown{}, fmt.Errorf("%w: repetitions=%d with zero reviews", ErrStateConflict, c.Repetitions)
		}
		switch {
		case IsNew(c):
			b.New++
		case mastered:
			b.Mastered++
		default:
			b.Learning++
		}
	}
	return b, nil
}
