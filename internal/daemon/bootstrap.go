// SPDX-License-Identifier: MIT

// Package daemon wires the locflow runtime and manages its lifecycle.
package daemon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/locflow/internal/api"
	"github.com/ManuGH/locflow/internal/api/middleware"
	"github.com/ManuGH/locflow/internal/backend"
	"github.com/ManuGH/locflow/internal/cache"
	"github.com/ManuGH/locflow/internal/catalog"
	"github.com/ManuGH/locflow/internal/config"
	workflow "github.com/ManuGH/locflow/internal/domain/workflow/manager"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/session"
	"github.com/ManuGH/locflow/internal/telemetry"
)

const (
	serviceName = "locflow"
	catalogTTL  = 10 * time.Minute
)

// BackendOptions maps the backend section onto client options. Token is
// taken from tokens when the config carries none.
func BackendOptions(cfg config.BackendConfig, tokens backend.TokenSource) backend.Options {
	opts := backend.Options{
		Timeout:        cfg.Timeout,
		UploadTimeout:  cfg.UploadTimeout,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		MaxRetries:     cfg.MaxRetries,
		RateLimit:      rate.Limit(cfg.RateLimit),
		RateLimitBurst: cfg.RateBurst,
		UserAgent:      serviceName,
		Token:          cfg.Token,
		PollRetries:    cfg.PollRetries,
		PollInterval:   cfg.PollInterval,
	}
	if cfg.Token == "" {
		opts.TokenSource = tokens
	}
	return opts
}

// ControllerOptions builds the per-session controller options from the
// current configuration.
func ControllerOptions(cfg config.AppConfig, sessionID string) (workflow.Options, error) {
	strategy, err := workflow.ParseStrategy(cfg.Strategy)
	if err != nil {
		return workflow.Options{}, err
	}
	return workflow.Options{
		SessionID:      sessionID,
		Strategy:       strategy,
		MaxUploadBytes: int64(cfg.Backend.MaxUploadMB) << 20,
		TickInterval:   cfg.Workflow.TickInterval,
		Language:       cfg.Language,
		Localize: ports.LocalizeOptions{
			Dubbing:    true,
			Subtitles:  true,
			LipSync:    cfg.Workflow.LipSync,
			VoiceStyle: cfg.Workflow.VoiceStyle,
		},
		MaxVariants: cfg.Workflow.MaxVariants,
	}, nil
}

// Bootstrap builds the runtime from the holder's current configuration.
// Resources opened here are released by the manager's shutdown hooks.
func Bootstrap(ctx context.Context, holder *config.ConfigHolder) (*App, error) {
	cfg := holder.Get()
	logger := log.WithComponent("daemon")

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level, keeping current")
	}
	if _, err := workflow.ParseStrategy(cfg.Strategy); err != nil {
		return nil, err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without tracing")
		tp = nil
	}

	store, err := cache.Open(ctx, cache.Config{
		Backend: cfg.Store.Backend,
		TTL:     cfg.Store.TTL,
		Redis: cache.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		},
		SQLitePath: cfg.Store.SQLitePath,
	}, logger)
	if err != nil {
		if tp != nil {
			_ = tp.Shutdown(ctx)
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	auth := cache.NewAuth(store)

	client := backend.NewClientWithOptions(cfg.Backend.URL, BackendOptions(cfg.Backend, auth.Token))

	registry := session.NewRegistry(func(id string) *workflow.Controller {
		opts, err := ControllerOptions(holder.Get(), id)
		if err != nil {
			// Validated at load; a bad reload falls back to live.
			opts.SessionID = id
		}
		return workflow.New(client, opts)
	}, cfg.Workflow.MaxSessions)

	srv := api.New(api.Deps{
		Registry:       registry,
		Catalog:        catalog.New(client, catalogTTL),
		Auth:           auth,
		Store:          store,
		Backend:        client,
		MaxUploadBytes: int64(cfg.Backend.MaxUploadMB) << 20,
		Language:       cfg.Language,
		Version:        cfg.Version,
		Stack: middleware.StackConfig{
			AllowedOrigins:     cfg.API.AllowedOrigins,
			EnableMetrics:      true,
			TracingService:     tracingService(cfg),
			EnableLogging:      true,
			RateLimitPerMinute: cfg.API.RateLimit,
		},
	})

	mgr, err := NewManager(DefaultServerConfig(cfg.Listen, cfg.Backend.UploadTimeout), Deps{
		Logger:     logger,
		APIHandler: srv,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if tp != nil {
		mgr.RegisterShutdownHook("tracing", tp.Shutdown)
	}
	mgr.RegisterShutdownHook("store", func(context.Context) error { return store.Close() })
	mgr.RegisterShutdownHook("sessions", func(context.Context) error {
		registry.CloseAndWait()
		return nil
	})

	holder.OnReload(func(old, updated config.AppConfig) {
		if old.LogLevel != updated.LogLevel {
			if err := log.SetLevel(updated.LogLevel); err != nil {
				logger.Warn().Err(err).Str("level", updated.LogLevel).Msg("invalid log level on reload")
			}
		}
	})

	logger.Info().
		Str("version", cfg.Version).
		Str("listen", cfg.Listen).
		Str(log.FieldBaseURL, cfg.Backend.URL).
		Str(log.FieldStrategy, cfg.Strategy).
		Str("store", cfg.Store.Backend).
		Msg("Starting locflow daemon")

	sweeper := &session.Sweeper{
		Registry: registry,
		Conf: session.SweeperConfig{
			Interval:    cfg.Workflow.SweepInterval,
			IdleTimeout: cfg.Workflow.IdleTimeout,
		},
	}
	return NewApp(logger, mgr, holder, sweeper), nil
}

func tracingService(cfg config.AppConfig) string {
	if !cfg.Tracing.Enabled {
		return ""
	}
	return serviceName
}
