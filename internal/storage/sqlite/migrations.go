package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: users must be created before the tables referencing them.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    qr_code_url TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS recurring_bills (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    description TEXT NOT NULL,
    amount REAL NOT NULL,
    currency TEXT NOT NULL,
    category TEXT NOT NULL,
    start_date INTEGER NOT NULL,
    frequency TEXT NOT NULL,
    payment_link TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS splits (
    id TEXT PRIMARY KEY,
    creator_id TEXT NOT NULL,
    description TEXT NOT NULL,
    total_amount REAL NOT NULL,
    currency TEXT NOT NULL,
    notify_interval TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (creator_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS split_shares (
    id TEXT PRIMARY KEY,
    split_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount_owed REAL NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    is_creator INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    UNIQUE (split_id, user_id),
    FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    description TEXT NOT NULL,
    amount REAL NOT NULL,
    currency TEXT NOT NULL,
    category TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '',
    split_id TEXT,
    date INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reminder_log (
    kind TEXT NOT NULL,
    obligation_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    due_date TEXT NOT NULL,
    sent_at INTEGER NOT NULL,
    PRIMARY KEY (kind, obligation_id, user_id, due_date)
);

CREATE INDEX IF NOT EXISTS idx_recurring_bills_user_id ON recurring_bills(user_id);
CREATE INDEX IF NOT EXISTS idx_splits_creator_id ON splits(creator_id);
CREATE INDEX IF NOT EXISTS idx_split_shares_split_id ON split_shares(split_id);
CREATE INDEX IF NOT EXISTS idx_split_shares_user_id ON split_shares(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_user_id ON expenses(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_split_id ON expenses(split_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
