// Package cache persists raw fetch-service responses in SQLite.
//
// The cache is keyed by (service, url) and stores the raw payload, never the
// parsed metadata, so parser fixes apply to cached entries without hitting
// the network again.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB handles connection
// pooling and serialization.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openballot/tally/internal/fetch"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Store is a SQLite-backed fetch.Cache.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at the given path and applies
// migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		service TEXT NOT NULL,
		url TEXT NOT NULL,
		body BLOB NOT NULL,
		fetched_at DATETIME NOT NULL,
		PRIMARY KEY (service, url)
	);

	CREATE INDEX IF NOT EXISTS idx_responses_fetched ON responses(fetched_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the cached raw response for (service, url), if present.
func (s *Store) Get(service, url string) (*fetch.RawResponse, bool, error) {
	var body []byte
	var fetchedAt time.Time
	err := s.db.QueryRow(
		"SELECT body, fetched_at FROM responses WHERE service = ? AND url = ?",
		service, url,
	).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &fetch.RawResponse{Body: body, FetchedAt: fetchedAt}, true, nil
}

// Put stores a raw response, replacing any previous entry for the key.
func (s *Store) Put(service, url string, raw *fetch.RawResponse) error {
	fetchedAt := raw.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO responses (service, url, body, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(service, url) DO UPDATE SET
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`, service, url, raw.Body, fetchedAt)
	return err
}

// Purge deletes entries fetched before the cutoff and returns how many were
// removed.
func (s *Store) Purge(olderThan time.Duration) (int64, error) {
	res, err := s.db.Exec("DELETE FROM responses WHERE fetched_at < ?", time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
