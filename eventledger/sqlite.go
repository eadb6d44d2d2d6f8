package eventledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_events (
	event_id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	processed_at TIMESTAMP NOT NULL
);`

// SQLite is the durable ledger: reservations survive restarts, so a
// redelivered event is skipped even after a redeploy. The primary key on
// event_id makes Reserve an atomic check-and-insert.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	// sqlite creates the file but not its directory
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create event ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event ledger: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create processed_events table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Reserve(ctx context.Context, eventID, eventType string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO processed_events (event_id, event_type, processed_at) VALUES (?, ?, ?)",
		eventID, eventType, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("reserve event %s: %w", eventID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve event %s: %w", eventID, err)
	}
	return n == 1, nil
}

func (s *SQLite) Release(ctx context.Context, eventID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM processed_events WHERE event_id = ?", eventID); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}

func (s *SQLite) Seen(ctx context.Context, eventID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_events WHERE event_id = ?", eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup event %s: %w", eventID, err)
	}
	return true, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
