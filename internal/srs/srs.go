package srs

import (
	"fmt"
	"math"
	"time"
)

// Default scheduling values for a card that has never been reviewed.
const (
	DefaultEase = 2.5
	MinEase     = 1.3
)

// Quality is the user's 0-5 self-assessment of recall difficulty,
// following the SuperMemo SM-2 scale.
type Quality int

const (
	Blackout  Quality = iota // no recall at all
	Wrong                    // wrong, remembered once shown the answer
	WrongEasy                // wrong, but the answer felt easy to recall
	Hard                     // correct with significant effort
	Good                     // correct after some hesitation
	Perfect                  // immediate recall
)

// IsValid reports whether q is within the 0-5 rating scale.
func (q Quality) IsValid() bool {
	return q >= Blackout && q <= Perfect
}

// Classify maps a quality rating to a correct/incorrect verdict.
// A rating of 3 or higher counts as correct. Ratings outside 0-5
// return ErrInvalidQuality.
func Classify(q Quality) (bool, error) {
	if !q.IsValid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return q >= Hard, nil
}

// Result is the scheduling outcome of a single review.
type Result struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	NextReview   time.Time
	WasCorrect   bool
}

// ComputeNext applies the SM-2 state transition to a card's current
// scheduling state and returns the next one. It is a pure function of its
// inputs; the caller supplies now so results are deterministic under test.
//
// A rating below 3 is a full reset: the repetition streak and interval drop
// to zero, ease takes a flat 0.2 penalty, and the card is due again
// immediately. On success the interval is piecewise: 1 day for the first
// repetition, 6 days for the second, then round(previous interval x new
// ease). The next review date is normalized to the start of the target
// calendar day so the due time does not drift with the time of day a
// review happened to occur.
func ComputeNext(q Quality, ease float64, intervalDays, repetitions int, now time.Time) (Result, error) {
	if !q.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}

	if q < Hard {
		return Result{
			EaseFactor:   roundEase(math.Max(MinEase, ease-0.2)),
			IntervalDays: 0,
			Repetitions:  0,
			NextReview:   now,
			WasCorrect:   false,
		}, nil
	}

	// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
	// Quality 3 still nudges ease down; only 5 raises it by the full 0.1.
	miss := float64(Perfect - q)
	newEase := math.Max(MinEase, ease+(0.1-miss*(0.08+miss*0.02)))

	newRepetitions := repetitions + 1
	var newInterval int
	switch newRepetitions {
	case 1:
		newInterval = 1
	case 2:
		newInterval = 6
	default:
		// Geometric growth multiplies the previous interval by the new
		// ease at full precision, before the 2-decimal rounding below.
		newInterval = int(math.Round(float64(intervalDays) * newEase))
	}

	return Result{
		EaseFactor:   roundEase(newEase),
		IntervalDays: newInterval,
		Repetitions:  newRepetitions,
		NextReview:   startOfDay(now.AddDate(0, 0, newInterval)),
		WasCorrect:   true,
	}, nil
}

// roundEase rounds an ease factor to the 2 decimal places used for
// storage and display.
func roundEase(ease float64) float64 {
	return math.Round(ease*100) / 100
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
