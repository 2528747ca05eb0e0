package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLedger stores seen IDs in a single SQLite table
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens the database at path. The schema is created on first use.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	l := &SQLiteLedger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

func (l *SQLiteLedger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seen_videos (
		video_id   TEXT PRIMARY KEY,
		first_seen TEXT NOT NULL
	);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Load returns every recorded ID
func (l *SQLiteLedger) Load(ctx context.Context) (Set, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT video_id FROM seen_videos`)
	if err != nil {
		return nil, fmt.Errorf("load seen videos: %w", err)
	}
	defer rows.Close()

	seen := Set{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen video: %w", err)
		}
		seen.Add(id)
	}
	return seen, rows.Err()
}

// Record inserts ids, keeping the first-seen timestamp of existing rows
func (l *SQLiteLedger) Record(ctx context.Context, ids []string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO seen_videos (video_id, first_seen) VALUES (?, ?)
			 ON CONFLICT (video_id) DO NOTHING`,
			id, now,
		); err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close closes the database connection
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
