package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jmylchreest/postersort/internal/colour"
)

// CacheKey identifies one reproducible extraction result.
type CacheKey struct {
	Strategy colour.Strategy
	// Settings is the registry fingerprint the colour was extracted under.
	Settings string
	Path     string
	Size     int64
	ModTime  int64
	Seed     string
}

// NewCacheKey builds a key from the file's absolute path, size and
// modification time, so edited posters miss the cache. settings is the
// fingerprint of the extraction settings.
func NewCacheKey(strategy colour.Strategy, settings, path, seedKey string) (CacheKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return CacheKey{}, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return CacheKey{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	return CacheKey{
		Strategy: strategy,
		Settings: settings,
		Path:     abs,
		Size:     info.Size(),
		ModTime:  info.ModTime().UnixNano(),
		Seed:     seedKey,
	}, nil
}

// AutoCachePath selects DefaultCachePath in configuration and flags.
const AutoCachePath = "auto"

// DefaultCachePath returns the per-user cache database location.
func DefaultCachePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "postersort", "colours.db"), nil
	}
	return filepath.Join(cacheDir, "postersort", "colours.db"), nil
}

// Cache persists extracted colours in SQLite.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Workers share one connection; SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS colour_cache (
		strategy TEXT NOT NULL,
		settings TEXT NOT NULL,
		path     TEXT NOT NULL,
		size     INTEGER NOT NULL,
		mtime    INTEGER NOT NULL,
		seed     TEXT NOT NULL,
		present  INTEGER NOT NULL,
		r        REAL NOT NULL,
		g        REAL NOT NULL,
		b        REAL NOT NULL,
		PRIMARY KEY (strategy, settings, path, size, mtime, seed)
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached colour for key, if any.
func (c *Cache) Get(ctx context.Context, key CacheKey) (colour.Color, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT present, r, g, b FROM colour_cache
		 WHERE strategy = ? AND settings = ? AND path = ? AND size = ? AND mtime = ? AND seed = ?`,
		string(key.Strategy), key.Settings, key.Path, key.Size, key.ModTime, key.Seed)

	var present bool
	var r, g, b float64
	if err := row.Scan(&present, &r, &g, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return colour.Absent, false, nil
		}
		return colour.Absent, false, fmt.Errorf("query cache: %w", err)
	}
	if !present {
		return colour.Absent, true, nil
	}
	return colour.NewColor(r, g, b), true, nil
}

// Put stores the colour for key, replacing any previous value.
func (c *Cache) Put(ctx context.Context, key CacheKey, col colour.Color) error {
	r, g, b := col.RGB()
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO colour_cache (strategy, settings, path, size, mtime, seed, present, r, g, b)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(key.Strategy), key.Settings, key.Path, key.Size, key.ModTime, key.Seed, !col.IsAbsent(), r, g, b)
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
