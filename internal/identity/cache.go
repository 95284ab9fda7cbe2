// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

const cacheDBFile = "identity.db"

// Cache is a short-TTL SQLite lookup cache for resolved author identities.
// Entries past their TTL are treated as absent and overwritten on the next
// successful resolution.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenCache opens or creates the cache database under cfg.CacheDir. An empty
// CacheDir returns a nil cache, which disables cross-run caching.
func OpenCache(cfg types.IdentityConfig) (*Cache, error) {
	if cfg.CacheDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CacheDir, cacheDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	c := &Cache{db: db, ttl: ttl}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS identities (
		query TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		name TEXT,
		profile_url TEXT,
		resolved_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the cached identity for a query if present and fresh.
func (c *Cache) Get(query string) (Identity, bool, error) {
	var id Identity
	var resolvedAt string
	err := c.db.QueryRow(
		`SELECT author_id, name, profile_url, resolved_at FROM identities WHERE query = ?`,
		query,
	).Scan(&id.AuthorID, &id.Name, &id.ProfileURL, &resolvedAt)
	if err == sql.ErrNoRows {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, fmt.Errorf("reading cache: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, resolvedAt)
	if err != nil || time.Since(ts) > c.ttl {
		return Identity{}, false, nil
	}
	return id, true, nil
}

// Put stores or refreshes the identity for a query.
func (c *Cache) Put(query string, id Identity) error {
	_, err := c.db.Exec(
		`INSERT INTO identities (query, author_id, name, profile_url, resolved_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(query) DO UPDATE SET
			author_id = excluded.author_id,
			name = excluded.name,
			profile_url = excluded.profile_url,
			resolved_at = excluded.resolved_at`,
		query, id.AuthorID, id.Name, id.ProfileURL, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
