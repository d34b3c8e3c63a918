package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallbox/recallbox/internal/domain"
	"github.com/recallbox/recallbox/internal/srs"
)

var testNow = time.Date(2026, time.March, 10, 15, 4, 5, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateCardDefaults(t *testing.T) {
	db := openTestDB(t)

	card, err := db.CreateCard("folder-1", "What is SM-2?", "A spaced repetition algorithm", testNow)
	require.NoError(t, err)
	require.NotEmpty(t, card.ID)

	got, err := db.FindCard(card.ID)
	require.NoError(t, err)

	assert.Equal(t, "folder-1", got.FolderID)
	assert.Equal(t, srs.DefaultEase, got.EaseFactor)
	assert.Equal(t, 0, got.IntervalDays)
	assert.Equal(t, 0, got.Repetitions)
	assert.Equal(t, 0, got.TotalReviews)
	assert.Equal(t, 0, got.CorrectReviews)
	assert.Nil(t, got.LastReviewed)
	assert.True(t, got.NextReview.Equal(testNow), "new card should be due immediately")
}

func TestFindCardNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.FindCard("no-such-card")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCardsByFolder(t *testing.T) {
	db := openTestDB(t)

	_, err := db.CreateCard("folder-1", "q1", "a1", testNow)
	require.NoError(t, err)
	_, err = db.CreateCard("folder-1", "q2", "a2", testNow.Add(time.Minute))
	require.NoError(t, err)
	_, err = db.CreateCard("folder-2", "q3", "a3", testNow)
	require.NoError(t, err)

	folder1, err := db.ListCards("folder-1")
	require.NoError(t, err)
	assert.Len(t, folder1, 2)

	all, err := db.ListCards("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListDueCards(t *testing.T) {
	db := openTestDB(t)

	due, err := db.CreateCard("folder-1", "due", "a", testNow.Add(-time.Hour))
	require.NoError(t, err)
	_, err = db.CreateCard("folder-1", "also due", "a", testNow)
	require.NoError(t, err)

	// Push the third card into the future by reviewing it.
	future, err := db.CreateCard("folder-1", "future", "a", testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	reviewCard(t, db, future, srs.Good)

	cards, err := db.ListDueCards("folder-1", testNow)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, due.ID, cards[0].ID, "due cards should be ordered soonest first")
}

// reviewCard applies a single review through the calculator, as the review
// service would.
func reviewCard(t *testing.T, db *DB, card domain.Card, q srs.Quality) domain.Card {
	t.Helper()
	result, err := srs.ComputeNext(q, card.EaseFactor, card.IntervalDays, card.Repetitions, testNow)
	require.NoError(t, err)

	now := testNow
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

	err = db.ApplyReview(updated, domain.ReviewEvent{
		CardID:        card.ID,
		FolderID:      card.FolderID,
		Quality:       int(q),
		WasCorrect:    result.WasCorrect,
		EaseAfter:     result.EaseFactor,
		IntervalAfter: result.IntervalDays,
		ReviewedAt:    now,
	})
	require.NoError(t, err)
	updated.Version++
	return updated
}

func TestApplyReviewUpdatesStateAndAppendsEvent(t *testing.T) {
	db := openTestDB(t)

	card, err := db.CreateCard("folder-1", "q", "a", testNow)
	require.NoError(t, err)

	reviewCard(t, db, card, srs.Good)

	got, err := db.FindCard(card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
	assert.Equal(t, 1, got.IntervalDays)
	assert.Equal(t, 1, got.TotalReviews)
	assert.Equal(t, 1, got.CorrectReviews)
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.LastReviewed)

	events, err := db.ListReviews(card.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int(srs.Good), events[0].Quality)
	assert.True(t, events[0].WasCorrect)
	assert.Equal(t, got.EaseFactor, events[0].EaseAfter)
	assert.Equal(t, got.IntervalDays, events[0].IntervalAfter)
}

func TestApplyReviewConflictOnStaleVersion(t *testing.T) {
	db := openTestDB(t)

	card, err := db.CreateCard("folder-1", "q", "a", testNow)
	require.NoError(t, err)

	// Two sessions read the same pre-review state.
	first, err := db.FindCard(card.ID)
	require.NoError(t, err)
	second, err := db.FindCard(card.ID)
	require.NoError(t, err)

	reviewCard(t, db, first, srs.Good)

	// The second write is based on the stale version and must not commit.
	second.TotalReviews++
	err = db.ApplyReview(second, domain.ReviewEvent{
		CardID:     second.ID,
		FolderID:   second.FolderID,
		Quality:    int(srs.Good),
		WasCorrect: true,
		ReviewedAt: testNow,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// The losing review left no trace: one event, counters incremented once.
	got, err := db.FindCard(card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalReviews)

	events, err := db.ListReviews(card.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestApplyReviewNotFound(t *testing.T) {
	db := openTestDB(t)

	err := db.ApplyReview(domain.Card{ID: "ghost"}, domain.ReviewEvent{CardID: "ghost", ReviewedAt: testNow})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCardCascadesReviews(t *testing.T) {
	db := openTestDB(t)

	card, err := db.CreateCard("folder-1", "q", "a", testNow)
	require.NoError(t, err)
	reviewCard(t, db, card, srs.Perfect)

	require.NoError(t, db.DeleteCard(card.ID))

	_, err = db.FindCard(card.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	events, err := db.ListReviews(card.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.ErrorIs(t, db.DeleteCard(card.ID), ErrNotFound)
}
