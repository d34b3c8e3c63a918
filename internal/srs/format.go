package srs

import (
	"fmt"
	"time"
)

// Labels for the 0-5 quality scale.
var qualityLabels = [6]string{
	"Complete Blackout",
	"Wrong",
	"Wrong (Easy)",
	"Correct (Hard)",
	"Correct",
	"Perfect",
}

// Button captions for the condensed 4-button review UI. Grouping 1/2 into
// "Hard" and 3/4 into "Good" is a presentation choice only; the engine
// always keeps the full 6-point scale.
var qualityButtons = [6]string{
	"Again",
	"Hard",
	"Hard",
	"Good",
	"Good",
	"Easy",
}

// QualityLabel returns the descriptive label for a quality rating,
// or "Unknown" for values outside the scale.
func QualityLabel(q Quality) string {
	if !q.IsValid() {
		return "Unknown"
	}
	return qualityLabels[q]
}

// QualityButtonText returns the review-button caption for a quality rating,
// or "Unknown" for values outside the scale.
func QualityButtonText(q Quality) string {
	if !q.IsValid() {
		return "Unknown"
	}
	return qualityButtons[q]
}

// DifficultyLevel classifies a card by its ease factor.
func DifficultyLevel(easeFactor float64) string {
	switch {
	case easeFactor < 2.0:
		return "Hard"
	case easeFactor < DefaultEase:
		return "Medium"
	default:
		return "Easy"
	}
}

// FormatNextReview renders the next review date as a short relative label
// such as "Due today", "Due in 3 days" or "Overdue by 2 days".
func FormatNextReview(now, next time.Time) string {
	days := DaysUntil(now, next)
	switch {
	case days < 0:
		return fmt.Sprintf("Overdue by %d day%s", -days, plural(-days))
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	case days < 7:
		return fmt.Sprintf("Due in %d days", days)
	case days < 30:
		weeks := roundDiv(days, 7)
		return fmt.Sprintf("Due in %d week%s", weeks, plural(weeks))
	case days < 365:
		months := roundDiv(days, 30)
		return fmt.Sprintf("Due in %d month%s", months, plural(months))
	default:
		years := roundDiv(days, 365)
		return fmt.Sprintf("Due in %d year%s", years, plural(years))
	}
}

// PreviewInterval computes the interval a rating would produce without
// committing it, rendered as a bare magnitude ("Today", "1 day", "3 days",
// "2 months"). The review screen shows one of these under each button.
func PreviewInterval(q Quality, ease float64, intervalDays, repetitions int, now time.Time) (string, error) {
	result, err := ComputeNext(q, ease, intervalDays, repetitions, now)
	if err != nil {
		return "", err
	}
	return formatInterval(result.IntervalDays), nil
}

func formatInterval(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "1 day"
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		months := roundDiv(days, 30)
		return fmt.Sprintf("%d month%s", months, plural(months))
	default:
		years := roundDiv(days, 365)
		return fmt.Sprintf("%d year%s", years, plural(years))
	}
}

// roundDiv divides and rounds to the nearest whole unit.
func roundDiv(n, unit int) int {
	return (2*n + unit) / (2 * unit)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
