package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is a Store backed by a local SQLite file. It models the
// reload-surviving cache: entries persist across process restarts but
// remain strictly local and disposable.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the cache database at path and
// brings its schema up to date.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}
	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run cache migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func runMigrations(path string) error {
	// Separate connection so migrations don't interfere with the pool.
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, time.Time, bool) {
	var payload []byte
	var ts int64
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, ts FROM cache_entries WHERE key = ?", key,
	).Scan(&payload, &ts)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, time.Time{}, false
	}
	return payload, time.Unix(0, ts), true
}

func (s *SQLite) Set(ctx context.Context, key string, payload []byte, ts time.Time) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, payload, ts) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, ts = excluded.ts`,
		key, payload, ts.UnixNano())
	if err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *SQLite) Delete(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE key = ?", key); err != nil {
			slog.Warn("cache delete failed", "key", key, "error", err)
		}
	}
}

// likeEscaper protects the LIKE wildcards; cache keys contain
// underscores, which LIKE would otherwise treat as single-char matches.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *SQLite) DeletePrefix(ctx context.Context, prefix string) {
	pattern := likeEscaper.Replace(prefix) + "%"
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key LIKE ? ESCAPE '\'`, pattern); err != nil {
		slog.Warn("cache prefix delete failed", "prefix", prefix, "error", err)
	}
}

func (s *SQLite) DeleteOlderThan(ctx context.Context, cutoff time.Time) int {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE ts < ?", cutoff.UnixNano())
	if err != nil {
		slog.Warn("cache expiry sweep failed", "error", err)
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
