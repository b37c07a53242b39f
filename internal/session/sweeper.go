// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"time"

	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/metrics"
)

// SweeperConfig defines idle expiry.
type SweeperConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration // 0 disables expiry
}

// Sweeper removes sessions nobody has touched for IdleTimeout.
type Sweeper struct {
	Registry *Registry
	Conf     SweeperConfig
}

// Run calls SweepOnce on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Conf.Interval <= 0 || s.Conf.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(s.Conf.Interval)
	defer ticker.Stop()

	log.L().Info().
		Dur("interval", s.Conf.Interval).
		Dur("idle_timeout", s.Conf.IdleTimeout).
		Msg("session sweeper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs one pass and returns the number of expired sessions.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	if s.Conf.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.Registry.now().Add(-s.Conf.IdleTimeout)
	expired := 0
	for _, id := range s.Registry.idleSince(cutoff) {
		if ctx.Err() != nil {
			break
		}
		if err := s.Registry.Remove(id); err != nil {
			continue
		}
		expired++
		metrics.IncSessionsExpired()
	}
	if expired > 0 {
		log.L().Info().Int("count", expired).Msg("sweep removed idle sessions")
	}
	return expired
}
