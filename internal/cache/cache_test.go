// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/alicebob/miniredis/v2/server.(*Server).servePeer"),
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newRedisWithClient(client, RedisConfig{}, zerolog.Nop())
	t.Cleanup(func() { _ = r.Close() })
	return mr, r
}

// stores returns one instance of every backend.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	mem := NewMemory(0, 0)
	t.Cleanup(func() { _ = mem.Close() })

	_, rd := newMiniRedis(t)

	sq, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{BackendMemory: mem, BackendRedis: rd, BackendSQLite: sq}
}

func TestStores_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, ports.KeyAuthToken)
			assert.ErrorIs(t, err, ports.ErrKeyNotFound)

			require.NoError(t, s.Set(ctx, ports.KeyAuthToken, "tok-1"))
			require.NoError(t, s.Set(ctx, ports.KeyAuthToken, "tok-2"))
			got, err := s.Get(ctx, ports.KeyAuthToken)
			require.NoError(t, err)
			assert.Equal(t, "tok-2", got)

			require.NoError(t, s.Set(ctx, ports.KeyUser, `{"id":"u1"}`))
			require.NoError(t, s.Delete(ctx, ports.KeyAuthToken))
			_, err = s.Get(ctx, ports.KeyAuthToken)
			assert.ErrorIs(t, err, ports.ErrKeyNotFound)
			require.NoError(t, s.Delete(ctx, "never-set"))

			require.NoError(t, s.Clear(ctx))
			_, err = s.Get(ctx, ports.KeyUser)
			assert.ErrorIs(t, err, ports.ErrKeyNotFound)

			stats := s.Stats()
			assert.Equal(t, int64(3), stats.Sets)
			assert.Equal(t, int64(1), stats.Hits)
			assert.Equal(t, 0, stats.CurrentSize)
			assert.NoError(t, s.Ping(ctx))
		})
	}
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute, 0)
	defer m.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v"))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	assert.Equal(t, 1, m.deleteExpired())
	assert.Equal(t, int64(1), m.Stats().Evictions)
	assert.Equal(t, 0, m.Stats().CurrentSize)
}

func TestMemory_JanitorStopsOnClose(t *testing.T) {
	m := NewMemory(time.Millisecond, time.Millisecond)
	require.NoError(t, m.Set(context.Background(), "k", "v"))
	require.Eventually(t, func() bool { return m.Stats().CurrentSize == 0 }, time.Second, 2*time.Millisecond)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestRedis_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, r := newMiniRedis(t)
	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, r.Set(ctx, ports.KeyAuthToken, "tok"))
	assert.True(t, mr.Exists("locflow:auth_token"))

	require.NoError(t, r.Clear(ctx))
	assert.False(t, mr.Exists("locflow:auth_token"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	r := newRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), RedisConfig{TTL: time.Hour}, zerolog.Nop())
	defer r.Close()

	require.NoError(t, r.Set(ctx, "k", "v"))
	assert.Equal(t, time.Hour, mr.TTL("locflow:k"))
	mr.FastForward(2 * time.Hour)
	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSQLite_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.sqlite")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, ports.KeyAuthToken, "tok"))
	require.NoError(t, s.Close())

	s, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, ports.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, Config{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.sqlite")}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "etcd"}, zerolog.Nop())
	assert.Error(t, err)
}
