// SPDX-License-Identifier: MIT

// Package cache provides the key-value stores behind ports.KeyValue:
// in-memory, Redis and SQLite.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
)

// Store is a KeyValue with lifecycle and statistics.
type Store interface {
	ports.KeyValue
	// Stats returns store statistics.
	Stats() Stats
	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error
	Close() error
}

// Stats holds store counters.
type Stats struct {
	Hits        int64 // Get calls that found a live value
	Misses      int64 // Get calls for absent or expired keys
	Sets        int64
	Evictions   int64 // expired entries removed by the janitor
	CurrentSize int
}

type entry struct {
	value string
	// expiration is zero for entries without TTL.
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// Memory is an in-process Store. Values vanish with the process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	stats   Stats
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

var _ Store = (*Memory)(nil)

// NewMemory creates a memory store. A positive ttl expires entries after
// that long; a positive cleanupInterval starts a janitor that Close stops.
func NewMemory(ttl, cleanupInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.janitor(cleanupInterval)
	} else {
		close(m.done)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.isExpired(m.now()) {
		m.stats.Misses++
		return "", ports.ErrKeyNotFound
	}
	m.stats.Hits++
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if m.ttl > 0 {
		e.expiration = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	m.stats.Sets++
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
	return nil
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.CurrentSize = len(m.entries)
	return s
}

func (m *Memory) Ping(context.Context) error { return nil }

// Close stops the janitor. It is safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
	return nil
}

// deleteExpired removes expired entries and returns how many were removed.
func (m *Memory) deleteExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.entries {
		if e.isExpired(now) {
			delete(m.entries, k)
			n++
		}
	}
	m.stats.Evictions += int64(n)
	return n
}

func (m *Memory) janitor(interval time.Duration) {
	defer close(m.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.deleteExpired()
		case <-m.stop:
			return
		}
	}
}
