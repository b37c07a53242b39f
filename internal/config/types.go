// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads locflow configuration from defaults, a YAML file and
// the environment, in that order of increasing precedence.
package config

import "time"

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Version  string `yaml:"-"`
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"logLevel"`
	// Language selects user-facing messages ("tr", "en").
	Language string `yaml:"language"`
	// Strategy is "live" or "simulated".
	Strategy string `yaml:"strategy"`

	Backend  BackendConfig  `yaml:"backend"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Store    StoreConfig    `yaml:"store"`
	API      APIConfig      `yaml:"api"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// BackendConfig configures the video-processing backend client.
type BackendConfig struct {
	URL           string        `yaml:"url"`
	Token         string        `yaml:"token"`
	Timeout       time.Duration `yaml:"timeout"`
	UploadTimeout time.Duration `yaml:"uploadTimeout"`
	MaxUploadMB   int           `yaml:"maxUploadMB"`
	MaxRetries    int           `yaml:"maxRetries"`
	PollRetries   int           `yaml:"pollRetries"`
	PollInterval  time.Duration `yaml:"pollInterval"`
	RateLimit     float64       `yaml:"rateLimit"`
	RateBurst     int           `yaml:"rateBurst"`
}

// WorkflowConfig configures controllers and the session registry.
type WorkflowConfig struct {
	TickInterval  time.Duration `yaml:"tickInterval"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	MaxSessions   int           `yaml:"maxSessions"`
	MaxVariants   int           `yaml:"maxVariants"`
	LipSync       bool          `yaml:"lipSync"`
	VoiceStyle    string        `yaml:"voiceStyle"`
}

// StoreConfig selects the key-value store for the auth token and user.
type StoreConfig struct {
	// Backend is memory, redis or sqlite.
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	SQLitePath    string        `yaml:"sqlitePath"`
}

// APIConfig configures the display HTTP API.
type APIConfig struct {
	// RateLimit is requests per minute per client IP; 0 disables.
	RateLimit      int      `yaml:"rateLimit"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}
