// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Listen:   ":8088",
		LogLevel: "info",
		Language: "tr",
		Strategy: "live",
		Backend: BackendConfig{
			URL:           "http://localhost:8000",
			Timeout:       30 * time.Second,
			UploadTimeout: 120 * time.Second,
			MaxUploadMB:   500,
			MaxRetries:    2,
			PollRetries:   20,
			PollInterval:  time.Second,
			RateLimit:     10,
			RateBurst:     20,
		},
		Workflow: WorkflowConfig{
			TickInterval:  500 * time.Millisecond,
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   256,
			MaxVariants:   2,
		},
		Store: StoreConfig{
			Backend:    "memory",
			RedisAddr:  "localhost:6379",
			SQLitePath: "locflow.sqlite",
		},
		API: APIConfig{
			RateLimit:      120,
			AllowedOrigins: []string{"*"},
		},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}
