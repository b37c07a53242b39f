// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session keeps one workflow controller per browser session.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/locflow/internal/domain/workflow/manager"
	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/metrics"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrFull     = errors.New("session limit reached")
)

// Factory builds the controller for a new session.
type Factory func(sessionID string) *manager.Controller

type entry struct {
	ctrl       *manager.Controller
	createdAt  time.Time
	lastAccess time.Time
}

// Info describes a live session.
type Info struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	LastAccess time.Time `json:"lastAccess"`
}

// Registry owns the live controllers. Removing a session closes its
// controller.
type Registry struct {
	factory Factory
	limit   int
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates a registry. A limit of zero means unbounded.
func NewRegistry(factory Factory, limit int) *Registry {
	return &Registry{
		factory:  factory,
		limit:    limit,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session.
func (r *Registry) Create() (string, *manager.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.sessions) >= r.limit {
		return "", nil, ErrFull
	}
	id := uuid.NewString()
	now := r.now()
	e := &entry{ctrl: r.factory(id), createdAt: now, lastAccess: now}
	r.sessions[id] = e
	metrics.SetActiveSessions(len(r.sessions))
	log.L().Debug().Str(log.FieldSessionID, id).Str(log.FieldEvent, "session.created").Msg("session created")
	return id, e.ctrl, nil
}

// Get returns the controller for id and records the access.
func (r *Registry) Get(id string) (*manager.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastAccess = r.now()
	return e.ctrl, nil
}

// Remove deletes the session and closes its controller.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.SetActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.ctrl.Close()
	log.L().Debug().Str(log.FieldSessionID, id).Str(log.FieldEvent, "session.removed").Msg("session removed")
	return nil
}

// List returns live sessions ordered by creation time.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.sessions))
	for id, e := range r.sessions {
		out = append(out, Info{ID: id, CreatedAt: e.createdAt, LastAccess: e.lastAccess})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// idleSince returns sessions last accessed before cutoff.
func (r *Registry) idleSince(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, e := range r.sessions {
		if e.lastAccess.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// CloseAndWait removes every session and waits for their controllers to stop.
func (r *Registry) CloseAndWait() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	metrics.SetActiveSessions(0)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range all {
		wg.Add(1)
		go func(c *manager.Controller) {
			defer wg.Done()
			c.Close()
		}(e.ctrl)
	}
	wg.Wait()
}
