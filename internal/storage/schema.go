package storage

const schema = `
-- The 'cards' table stores each flashcard together with its scheduling
-- state. The version column is bumped on every review so concurrent
-- reviews of the same card cannot silently overwrite each other.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    folder_id TEXT NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    interval_days INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    next_review_date DATETIME NOT NULL,
    last_reviewed_at DATETIME,
    total_reviews INTEGER NOT NULL DEFAULT 0,
    correct_reviews INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_folder ON cards(folder_id);
CREATE INDEX IF NOT EXISTS idx_cards_next_review ON cards(next_review_date);

-- The 'reviews' table is the append-only ledger: one row per review,
-- never updated or deleted except by cascade when the card goes away.
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    folder_id TEXT NOT NULL,
    quality INTEGER NOT NULL,
    was_correct INTEGER NOT NULL,
    time_taken_seconds INTEGER,
    ease_factor_after REAL NOT NULL,
    interval_days_after INTEGER NOT NULL,
    reviewed_at DATETIME NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reviews_card ON reviews(card_id);
`
