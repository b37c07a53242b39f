// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/locflow/internal/validate"
)

// Validate checks cfg and returns every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("listen", cfg.Listen)
	v.Custom("logLevel", cfg.LogLevel, func(any) error {
		_, err := zerolog.ParseLevel(cfg.LogLevel)
		return err
	})
	v.LanguageTag("language", cfg.Language)
	v.OneOf("strategy", cfg.Strategy, []string{"live", "simulated"})

	v.URL("backend.url", cfg.Backend.URL, []string{"http", "https"})
	v.DurationRange("backend.timeout", cfg.Backend.Timeout, time.Second, 10*time.Minute)
	v.DurationRange("backend.uploadTimeout", cfg.Backend.UploadTimeout, time.Second, time.Hour)
	v.Range("backend.maxUploadMB", cfg.Backend.MaxUploadMB, 1, 4096)
	v.Range("backend.maxRetries", cfg.Backend.MaxRetries, 0, 10)
	v.Positive("backend.pollRetries", cfg.Backend.PollRetries)
	v.DurationRange("backend.pollInterval", cfg.Backend.PollInterval, 10*time.Millisecond, time.Minute)
	if cfg.Backend.RateLimit < 0 {
		v.AddError("backend.rateLimit", "must not be negative", cfg.Backend.RateLimit)
	}
	v.NonNegative("backend.rateBurst", cfg.Backend.RateBurst)

	v.DurationRange("workflow.tickInterval", cfg.Workflow.TickInterval, 10*time.Millisecond, 10*time.Second)
	v.NonNegative("workflow.maxSessions", cfg.Workflow.MaxSessions)
	v.Range("workflow.maxVariants", cfg.Workflow.MaxVariants, 1, 10)
	if cfg.Workflow.IdleTimeout > 0 && cfg.Workflow.SweepInterval <= 0 {
		v.AddError("workflow.sweepInterval", "must be positive when idleTimeout is set", cfg.Workflow.SweepInterval)
	}

	v.OneOf("store.backend", cfg.Store.Backend, []string{"memory", "redis", "sqlite"})
	switch cfg.Store.Backend {
	case "redis":
		v.NotEmpty("store.redisAddr", cfg.Store.RedisAddr)
		v.Range("store.redisDB", cfg.Store.RedisDB, 0, 15)
	case "sqlite":
		v.NotEmpty("store.sqlitePath", cfg.Store.SQLitePath)
	}

	v.NonNegative("api.rateLimit", cfg.API.RateLimit)

	if cfg.Tracing.Enabled {
		v.OneOf("tracing.exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("tracing.endpoint", cfg.Tracing.Endpoint)
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			v.AddError("tracing.samplingRate", fmt.Sprintf("must be within [0, 1], got %g", cfg.Tracing.SamplingRate), cfg.Tracing.SamplingRate)
		}
	}
	return v.Err()
}
