// Package review applies quality ratings to cards: it runs the SM-2
// calculator against a card's current state and persists the outcome
// together with an append-only review event.
package review

import (
	"fmt"
	"time"

	"github.com/recallbox/recallbox/internal/domain"
	"github.com/recallbox/recallbox/internal/srs"
	"github.com/recallbox/recallbox/internal/storage"
)

// Service coordinates reviews against the card store.
type Service struct {
	db  *storage.DB
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock substitutes the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a review service backed by db.
func NewService(db *storage.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCard adds a card to a folder with the default scheduling state.
func (s *Service) CreateCard(folderID, question, answer string) (domain.Card, error) {
	return s.db.CreateCard(folderID, question, answer, s.now())
}

// Cards lists all cards, or one folder's cards when folderID is non-empty.
func (s *Service) Cards(folderID string) ([]domain.Card, error) {
	return s.db.ListCards(folderID)
}

// Card retrieves a single card.
func (s *Service) Card(id string) (domain.Card, error) {
	return s.db.FindCard(id)
}

// DeleteCard removes a card and its review history.
func (s *Service) DeleteCard(id string) error {
	return s.db.DeleteCard(id)
}

// History returns a card's review events, newest first.
func (s *Service) History(cardID string) ([]domain.ReviewEvent, error) {
	return s.db.ListReviews(cardID)
}

// Review scores a card with the given quality rating. It computes the next
// scheduling state, then persists the state and the ledger event as one
// atomic write. The rating is rejected before any persistence when it is
// outside 0-5. A concurrent review of the same card surfaces as
// storage.ErrConflict; the caller decides whether to re-read and re-apply.
// There is no retry here: replaying a partially failed write could count
// the same review twice.
func (s *Service) Review(cardID string, quality srs.Quality, timeTakenSecs *int) (domain.Card, error) {
	now := s.now()

	card, err := s.db.FindCard(cardID)
	if err != nil {
		return domain.Card{}, err
	}

	result, err := srs.ComputeNext(quality, card.EaseFactor, card.IntervalDays, card.Repetitions, now)
	if err != nil {
		return domain.Card{}, err
	}

	updated := card
	updated.EaseFactor = result.EaseFactor
	updated.IntervalDays = result.IntervalDays
	updated.Repetitions = result.Repetitions
	updated.NextReview = result.NextReview
	updated.LastReviewed = &now
	updated.TotalReviews++
	if result.WasCorrect {
		updated.CorrectReviews++
	}

	event := domain.ReviewEvent{
		CardID:        card.ID,
		FolderID:      card.FolderID,
		Quality:       int(quality),
		WasCorrect:    result.WasCorrect,
		TimeTakenSecs: timeTakenSecs,
		EaseAfter:     result.EaseFactor,
		IntervalAfter: result.IntervalDays,
		ReviewedAt:    now,
	}

	if err := s.db.ApplyReview(updated, event); err != nil {
		return domain.Card{}, fmt.Errorf("review of card %s not applied: %w", cardID, err)
	}

	updated.Version++
	return updated, nil
}

// PreviewEntry describes what one quality rating would do to a card.
type PreviewEntry struct {
	Quality int    `json:"quality"`
	Label   string `json:"label"`
	Button  string `json:"button"`
	Next    string `json:"next"`
}

// Preview returns, for every quality rating, the interval label the card
// would get. Nothing is committed.
func (s *Service) Preview(cardID string) ([]PreviewEntry, error) {
	card, err := s.db.FindCard(cardID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]PreviewEntry, 0, int(srs.Perfect)+1)
	for q := srs.Blackout; q <= srs.Perfect; q++ {
		next, err := srs.PreviewInterval(q, card.EaseFactor, card.IntervalDays, card.Repetitions, now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PreviewEntry{
			Quality: int(q),
			Label:   srs.QualityLabel(q),
			Button:  srs.QualityButtonText(q),
			Next:    next,
		})
	}
	return entries, nil
}

// DueCards lists the cards due at the current instant, soonest first.
// An empty folderID spans the whole account.
func (s *Service) DueCards(folderID string) ([]domain.Card, error) {
	return s.db.ListDueCards(folderID, s.now())
}

// Stats aggregates scheduling state for a folder, or for the whole account
// when folderID is empty, together with the new/learning/mastered breakdown.
func (s *Service) Stats(folderID string) (srs.Stats, srs.Breakdown, error) {
	cards, err := s.db.ListCards(folderID)
	if err != nil {
		return srs.Stats{}, srs.Breakdown{}, err
	}

	states := make([]srs.CardState, len(cards))
	for i, c := range cards {
		states[i] = srs.CardState{
			EaseFactor:     c.EaseFactor,
			IntervalDays:   c.IntervalDays,
			Repetitions:    c.Repetitions,
			NextReview:     c.NextReview,
			TotalReviews:   c.TotalReviews,
			CorrectReviews: c.CorrectReviews,
		}
	}

	breakdown, err := srs.Compose(states)
	if err != nil {
		return srs.Stats{}, srs.Breakdown{}, err
	}
	return srs.Aggregate(states, s.now()), breakdown, nil
}
