package store

import (
	"database/sql"
	"time"
)

// Cache is a sqlite-backed response cache for collaborator payloads. The
// climate API serves a century of daily data per request, so repeated
// analyses of the same coordinates reuse the stored body until it expires.
type Cache struct {
	db     *sql.DB
	maxAge time.Duration
}

// DefaultMaxAge matches the hour-long expiry the upstream HTTP cache used.
const DefaultMaxAge = time.Hour

func NewCache(db *sql.DB, maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{db: db, maxAge: maxAge}
}

func (c *Cache) Migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS response_cache (
			cache_key TEXT PRIMARY KEY,
			fetched_at TIMESTAMP NOT NULL,
			body BLOB NOT NULL
		)
	`)
	return err
}

// Get returns the cached body for a key if present and not stale.
func (c *Cache) Get(key string) ([]byte, bool) {
	row := c.db.QueryRow(`SELECT fetched_at, body FROM response_cache WHERE cache_key = ?`, key)

	var fetchedAt time.Time
	var body []byte
	if err := row.Scan(&fetchedAt, &body); err != nil {
		return nil, false
	}
	if time.Since(fetchedAt) > c.maxAge {
		return nil, false
	}
	return body, true
}

// Set stores a body for a key, replacing any previous entry.
func (c *Cache) Set(key string, body []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO response_cache (cache_key, fetched_at, body)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			body = excluded.body
	`, key, time.Now().UTC(), body)
	return err
}

// Prune deletes entries older than the cache's max age.
func (c *Cache) Prune() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM response_cache WHERE fetched_at < ?`,
		time.Now().UTC().Add(-c.maxAge))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
