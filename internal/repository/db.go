package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// schema mirrors the persisted record layout: a 36-character UUID key,
// a derived title capped at the column width, and two timestamps.
// updated_at is refreshed explicitly by every content write.
const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id CHAR(36) PRIMARY KEY,
	title VARCHAR(255),
	content TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`

// Open opens the sqlite database at path and provisions the notes
// table if it does not exist yet.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to provision schema: %w", err)
	}

	return db, nil
}
