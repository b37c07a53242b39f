// SPDX-License-Identifier: MIT

// Package middleware holds the HTTP ingress stack of the display API.
package middleware

import (
	"github.com/go-chi/chi/v5"

	xglog "github.com/ManuGH/locflow/internal/log"
)

// StackConfig configures the canonical middleware stack.
type StackConfig struct {
	AllowedOrigins []string
	CSP            string

	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	// RateLimitPerMinute is per client IP; 0 disables.
	RateLimitPerMinute int
}

// NewRouter returns a chi router with the stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack installs the middleware in a fixed order.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// Outermost so panics anywhere below become 500s.
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(SecurityHeaders(cfg.CSP))
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.TracingService != "" {
		r.Use(OTelHTTP(cfg.TracingService))
	}
	if cfg.EnableLogging {
		r.Use(xglog.Middleware())
	}
	if cfg.RateLimitPerMinute > 0 {
		r.Use(APIRateLimit(cfg.RateLimitPerMinute))
	}
}
