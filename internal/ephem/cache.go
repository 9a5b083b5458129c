package ephem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// CacheConfig enables the persistent longitude cache when Path is set.
type CacheConfig struct {
	Path string `yaml:"path"`
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS longitudes (
	provider   TEXT    NOT NULL,
	body       TEXT    NOT NULL,
	instant    INTEGER NOT NULL,
	longitude  REAL    NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (provider, body, instant)
)`

// CachedProvider persists successful lookups of another provider in SQLite,
// keyed by provider name, body and instant (to the minute). Failed lookups
// are never stored, so a later run can retry them.
type CachedProvider struct {
	inner Provider
	db    *sql.DB
}

// NewCachedProvider opens (or creates) the cache database at cfg.Path.
func NewCachedProvider(ctx context.Context, inner Provider, cfg CacheConfig) (*CachedProvider, error) {
	if cfg.Path == "" {
		return nil, errors.New("cache path is empty")
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// ":memory:" databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &CachedProvider{inner: inner, db: db}, nil
}

// Name implements Provider.
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Longitude implements Provider.
func (p *CachedProvider) Longitude(ctx context.Context, t time.Time, body zodiac.Body) (float64, error) {
	instant := t.UTC().Truncate(time.Minute).Unix()

	var lon float64
	err := p.db.QueryRowContext(ctx,
		`SELECT longitude FROM longitudes WHERE provider = ? AND body = ? AND instant = ?`,
		p.inner.Name(), body.String(), instant,
	).Scan(&lon)
	switch {
	case err == nil:
		return lon, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("read cache: %w", err)
	}

	lon, err = p.inner.Longitude(ctx, t, body)
	if err != nil {
		return 0, err
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO longitudes (provider, body, instant, longitude, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		p.inner.Name(), body.String(), instant, lon, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("write cache: %w", err)
	}
	return lon, nil
}

// Len returns the number of cached rows.
func (p *CachedProvider) Len(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM longitudes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (p *CachedProvider) Close() error {
	return p.db.Close()
}
