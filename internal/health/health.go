// SPDX-License-Identifier: MIT

// Package health serves liveness and readiness probes with per-component
// status.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/resilience"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const defaultCheckTimeout = 2 * time.Second

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Response is the body of both probes. Ready is only set by readiness.
type Response struct {
	Status    Status                 `json:"status"`
	Ready     *bool                  `json:"ready,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Details   map[string]any         `json:"details,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type funcChecker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

func (c funcChecker) Name() string                          { return c.name }
func (c funcChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// CheckerFunc adapts fn into a named Checker.
func CheckerFunc(name string, fn func(ctx context.Context) CheckResult) Checker {
	return funcChecker{name: name, fn: fn}
}

// Pinger is anything with a reachability probe, such as a KV store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingChecker reports unhealthy when Ping fails.
func NewPingChecker(name string, p Pinger) Checker {
	return CheckerFunc(name, func(ctx context.Context) CheckResult {
		if err := p.Ping(ctx); err != nil {
			return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
		}
		return CheckResult{Status: StatusHealthy}
	})
}

// BreakerReporter exposes a circuit breaker state.
type BreakerReporter interface {
	BreakerState() resilience.State
}

// NewBreakerChecker reports degraded while the breaker is not closed. An
// open breaker does not make the service unready: workflows still surface
// classified errors and campaign generation falls back.
func NewBreakerChecker(name string, b BreakerReporter) Checker {
	return CheckerFunc(name, func(context.Context) CheckResult {
		st := b.BreakerState()
		if st == resilience.StateClosed {
			return CheckResult{Status: StatusHealthy, Message: string(st)}
		}
		return CheckResult{Status: StatusDegraded, Message: string(st)}
	})
}

// Manager runs the registered checkers.
type Manager struct {
	version  string
	timeout  time.Duration
	checkers []Checker
	details  func() map[string]any
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{version: version, timeout: defaultCheckTimeout}
}

// RegisterChecker adds a health checker to the manager
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// SetDetails installs a provider of extra fields for verbose responses.
func (m *Manager) SetDetails(fn func() map[string]any) {
	m.details = fn
}

// run executes every checker and folds the results into an overall status.
func (m *Manager) run(ctx context.Context) (Status, map[string]CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	overall := StatusHealthy
	checks := make(map[string]CheckResult, len(m.checkers))
	for _, c := range m.checkers {
		res := c.Check(ctx)
		checks[c.Name()] = res
		switch {
		case res.Status == StatusUnhealthy:
			overall = StatusUnhealthy
		case res.Status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return overall, checks
}

// Health is the liveness view. Components are only evaluated when verbose.
func (m *Manager) Health(ctx context.Context, verbose bool) Response {
	resp := Response{Status: StatusHealthy, Version: m.version, Timestamp: time.Now()}
	if verbose {
		resp.Status, resp.Checks = m.run(ctx)
		if m.details != nil {
			resp.Details = m.details()
		}
	}
	return resp
}

// Ready is the readiness view: unready when any component is unhealthy.
func (m *Manager) Ready(ctx context.Context, verbose bool) Response {
	status, checks := m.run(ctx)
	ready := status != StatusUnhealthy
	resp := Response{Status: status, Ready: &ready, Version: m.version, Timestamp: time.Now(), Checks: checks}
	if verbose && m.details != nil {
		resp.Details = m.details()
	}
	return resp
}

// ServeHealth always answers 200 while the process can serve.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	resp := m.Health(r.Context(), r.URL.Query().Get("verbose") == "true")
	m.write(w, r, http.StatusOK, resp, "health")
}

// ServeReady answers 503 when a component is unhealthy.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context(), r.URL.Query().Get("verbose") == "true")
	code := http.StatusOK
	if !*resp.Ready {
		code = http.StatusServiceUnavailable
	}
	m.write(w, r, code, resp, "readiness")
}

func (m *Manager) write(w http.ResponseWriter, r *http.Request, code int, resp Response, probe string) {
	logger := log.WithComponentFromContext(r.Context(), probe)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, probe+".encode_error").Msg("failed to encode probe response")
	}
	logger.Debug().
		Str(log.FieldEvent, probe+".checked").
		Str("status", string(resp.Status)).
		Msg("probe served")
}
