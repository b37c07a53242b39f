// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/persistence/sqlite"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// ErrCorrupt is returned by NewSQLite when an existing database fails the
// integrity check.
var ErrCorrupt = errors.New("sqlite store corrupt")

// SQLite is a durable Store in a single table.
type SQLite struct {
	db    *sql.DB
	now   func() time.Time
	stats struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens or creates the database at path. An existing file is
// quick-checked first.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if _, err := os.Stat(path); err == nil {
		issues, err := sqlite.VerifyIntegrity(ctx, path, sqlite.CheckQuick)
		if err != nil {
			return nil, err
		}
		if len(issues) > 0 {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, issues)
		}
	}

	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		s.stats.misses.Add(1)
		return "", ports.ErrKeyNotFound
	}
	if err != nil {
		s.stats.misses.Add(1)
		return "", fmt.Errorf("sqlite get %s: %w", key, err)
	}
	s.stats.hits.Add(1)
	return v, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	s.stats.sets.Add(1)
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

func (s *SQLite) Stats() Stats {
	var n int
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n)
	return Stats{
		Hits:        s.stats.hits.Load(),
		Misses:      s.stats.misses.Load(),
		Sets:        s.stats.sets.Load(),
		CurrentSize: n,
	}
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
