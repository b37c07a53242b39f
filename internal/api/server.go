// SPDX-License-Identifier: MIT

// Package api serves the display HTTP API over the session registry.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/locflow/internal/api/middleware"
	"github.com/ManuGH/locflow/internal/cache"
	"github.com/ManuGH/locflow/internal/catalog"
	"github.com/ManuGH/locflow/internal/health"
	"github.com/ManuGH/locflow/internal/i18n"
	"github.com/ManuGH/locflow/internal/session"
)

// multipartMemory is the part of an upload held in memory; the rest spools
// to a temp file.
const multipartMemory = 32 << 20

// Deps are the collaborators of the API server.
type Deps struct {
	Registry *session.Registry
	Catalog  *catalog.Catalog
	Auth     *cache.Auth
	// Store and Backend feed the readiness probe.
	Store   health.Pinger
	Backend health.BreakerReporter

	MaxUploadBytes int64
	Language       string
	Version        string
	Stack          middleware.StackConfig
}

// Server is the HTTP handler of the display API.
type Server struct {
	deps    Deps
	printer *i18n.Printer
	health  *health.Manager
	router  chi.Router
}

// New builds the server and its routes.
func New(deps Deps) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 500 << 20
	}
	s := &Server{deps: deps, printer: i18n.NewPrinter(deps.Language), health: newHealth(deps)}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(s.deps.Stack)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", s.handleLogin)
			r.Delete("/token", s.handleLogout)
			r.Get("/user", s.handleUser)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/", s.handleListSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/countries/{code}", s.handleToggleCountry)
				r.Post("/upload", s.handleUpload)
				r.Post("/continue", s.handleContinue)
				r.Post("/localization/start", s.handleStartLocalization)
				r.Post("/localization/confirm", s.handleConfirmLocalization)
				r.Post("/campaigns", s.handleGenerateCampaigns)
				r.Post("/navigate/{step}", s.handleNavigate)
			})
		})
	})
	return r
}

func newHealth(deps Deps) *health.Manager {
	hm := health.NewManager(deps.Version)
	if deps.Store != nil {
		hm.RegisterChecker(health.NewPingChecker("store", deps.Store))
	}
	if deps.Backend != nil {
		hm.RegisterChecker(health.NewBreakerChecker("backend", deps.Backend))
	}
	if deps.Registry != nil {
		hm.SetDetails(func() map[string]any {
			return map[string]any{"sessions": deps.Registry.Len()}
		})
	}
	return hm
}
