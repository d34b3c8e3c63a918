package domain

import "time"

// Card represents a single flashcard together with its scheduling state.
// The scheduling fields (ease factor, interval, repetitions, next review)
// are owned by the srs package: every review replaces them with the
// calculator's output, and no other code path writes them.
type Card struct {
	ID       string `json:"id"`
	FolderID string `json:"folder_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReview     time.Time  `json:"next_review_date"`
	LastReviewed   *time.Time `json:"last_reviewed_at"` // nil until the first review
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`

	// Version is bumped on every state write and guards concurrent
	// reviews of the same card against lost updates.
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewEvent records a single review of a card. Events are append-only:
// once written they are never edited or deleted, except when the owning
// card is deleted and the ledger rows cascade with it.
type ReviewEvent struct {
	ID            int64     `json:"id"`
	CardID        string    `json:"card_id"`
	FolderID      string    `json:"folder_id"`
	Quality       int       `json:"quality"`
	WasCorrect    bool      `json:"was_correct"`
	TimeTakenSecs *int      `json:"time_taken_seconds,omitempty"`
	EaseAfter     float64   `json:"ease_factor_after"`
	IntervalAfter int       `json:"interval_days_after"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}
