// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package progress

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/locflow/internal/log"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Target is the state the ticker drives. TickOnce applies one tick and
// reports whether every task is complete.
type Target interface {
	TickOnce() (complete bool)
}

// Ticker periodically calls Target.TickOnce until completion or Stop.
// It is restartable: Start after Stop launches a fresh loop.
type Ticker struct {
	Interval time.Duration
	Target   Target

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the loop unless one is already running.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)
		t.run(runCtx, interval)
	}()
}

// Stop cancels the loop and waits for it to exit. Safe to call when idle.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SetInterval changes the period used by the next Start.
func (t *Ticker) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Interval = d
}

// Running reports whether a loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *Ticker) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := log.WithComponent("progress")
	logger.Debug().Dur("interval", interval).Msg("progress ticker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.Target.TickOnce() {
				logger.Debug().Str(log.FieldEvent, "progress.complete").Msg("all localization tasks complete")
				return
			}
		}
	}
}
