package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recallbox/recallbox/internal/domain"
	"github.com/recallbox/recallbox/internal/srs"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Sentinel errors surfaced by the store.
// Check with errors.Is: errors.Is(err, storage.ErrNotFound)
var (
	ErrNotFound = errors.New("storage: card not found")
	ErrConflict = errors.New("storage: card was modified concurrently")
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps the in-memory DSN coherent and sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateCard inserts a new card with the default scheduling state: ease 2.5,
// interval 0, no repetitions, due immediately and never reviewed.
func (db *DB) CreateCard(folderID, question, answer string, now time.Time) (domain.Card, error) {
	card := domain.Card{
		ID:         uuid.NewString(),
		FolderID:   folderID,
		Question:   question,
		Answer:     answer,
		EaseFactor: srs.DefaultEase,
		NextReview: now,
		CreatedAt:  now,
	}

	_, err := db.conn.Exec(`
		INSERT INTO cards (id, folder_id, question, answer, ease_factor, interval_days, repetitions,
			next_review_date, total_reviews, correct_reviews, version, created_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, 0, 0, 0, ?)
	`,
		card.ID,
		card.FolderID,
		card.Question,
		card.Answer,
		card.EaseFactor,
		card.NextReview,
		card.CreatedAt,
	)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to insert card: %w", err)
	}
	return card, nil
}

const cardColumns = `id, folder_id, question, answer, ease_factor, interval_days, repetitions,
	next_review_date, last_reviewed_at, total_reviews, correct_reviews, version, created_at`

// FindCard retrieves a card by its ID. Returns ErrNotFound if no card exists.
func (db *DB) FindCard(id string) (domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
		}
		return domain.Card{}, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return card, nil
}

// ListCards retrieves all cards, or the cards of one folder when folderID is
// non-empty, newest first.
func (db *DB) ListCards(folderID string) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at DESC`
	args := []any{}
	if folderID != "" {
		query = `SELECT ` + cardColumns + ` FROM cards WHERE folder_id = ? ORDER BY created_at DESC`
		args = append(args, folderID)
	}
	return db.queryCards(query, args...)
}

// ListDueCards retrieves cards whose next review is at or before now,
// soonest first. An empty folderID spans all folders.
func (db *DB) ListDueCards(folderID string, now time.Time) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE next_review_date <= ? ORDER BY next_review_date ASC`
	args := []any{now}
	if folderID != "" {
		query = `SELECT ` + cardColumns + ` FROM cards WHERE folder_id = ? AND next_review_date <= ? ORDER BY next_review_date ASC`
		args = []any{folderID, now}
	}
	return db.queryCards(query, args...)
}

func (db *DB) queryCards(query string, args ...any) ([]domain.Card, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (domain.Card, error) {
	var card domain.Card
	var lastReviewed sql.NullTime
	err := s.Scan(
		&card.ID,
		&card.FolderID,
		&card.Question,
		&card.Answer,
		&card.EaseFactor,
		&card.IntervalDays,
		&card.Repetitions,
		&card.NextReview,
		&lastReviewed,
		&card.TotalReviews,
		&card.CorrectReviews,
		&card.Version,
		&card.CreatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		card.LastReviewed = &t
	}
	return card, nil
}

// ApplyReview persists the post-review card state and appends the review
// event in a single transaction, so the two can never diverge. The card row
// is matched on the version the caller read; if another review committed in
// between, nothing is written and ErrConflict is returned.
func (db *DB) ApplyReview(card domain.Card, event domain.ReviewEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE cards
		SET ease_factor = ?, interval_days = ?, repetitions = ?, next_review_date = ?,
			last_reviewed_at = ?, total_reviews = ?, correct_reviews = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.NextReview,
		card.LastReviewed,
		card.TotalReviews,
		card.CorrectReviews,
		card.ID,
		card.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update card state for %s: %w", card.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review update for %s: %w", card.ID, err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM cards WHERE id = ?)`, card.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check card %s: %w", card.ID, err)
		}
		if !exists {
			return fmt.Errorf("card %s: %w", card.ID, ErrNotFound)
		}
		return fmt.Errorf("card %s at version %d: %w", card.ID, card.Version, ErrConflict)
	}

	_, err = tx.Exec(`
		INSERT INTO reviews (card_id, folder_id, quality, was_correct, time_taken_seconds,
			ease_factor_after, interval_days_after, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.CardID,
		event.FolderID,
		event.Quality,
		boolToInt(event.WasCorrect),
		event.TimeTakenSecs,
		event.EaseAfter,
		event.IntervalAfter,
		event.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append review event for %s: %w", event.CardID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review for %s: %w", card.ID, err)
	}
	return nil
}

// ListReviews retrieves the review history for a card, newest first.
func (db *DB) ListReviews(cardID string) ([]domain.ReviewEvent, error) {
	rows, err := db.conn.Query(`
		SELECT id, card_id, folder_id, quality, was_correct, time_taken_seconds,
			ease_factor_after, interval_days_after, reviewed_at
		FROM reviews WHERE card_id = ? ORDER BY reviewed_at DESC, id DESC
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for %s: %w", cardID, err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var ev domain.ReviewEvent
		var wasCorrect int
		var taken sql.NullInt64
		if err := rows.Scan(
			&ev.ID,
			&ev.CardID,
			&ev.FolderID,
			&ev.Quality,
			&wasCorrect,
			&taken,
			&ev.EaseAfter,
			&ev.IntervalAfter,
			&ev.ReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review row for %s: %w", cardID, err)
		}
		ev.WasCorrect = wasCorrect != 0
		if taken.Valid {
			secs := int(taken.Int64)
			ev.TimeTakenSecs = &secs
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteCard removes a card; its review events cascade with it.
func (db *DB) DeleteCard(id string) error {
	res, err := db.conn.Exec(`DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of card %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
