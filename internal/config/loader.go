// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys.
const (
	EnvBackendURL     = "LOCFLOW_BACKEND_URL"
	EnvAPIToken       = "LOCFLOW_API_TOKEN"
	EnvListen         = "LOCFLOW_LISTEN"
	EnvStrategy       = "LOCFLOW_STRATEGY"
	EnvLanguage       = "LOCFLOW_LANGUAGE"
	EnvLogLevel       = "LOCFLOW_LOG_LEVEL"
	EnvTimeout        = "LOCFLOW_TIMEOUT"
	EnvUploadTimeout  = "LOCFLOW_UPLOAD_TIMEOUT"
	EnvMaxUploadMB    = "LOCFLOW_MAX_UPLOAD_MB"
	EnvMaxRetries     = "LOCFLOW_MAX_RETRIES"
	EnvPollRetries    = "LOCFLOW_POLL_RETRIES"
	EnvPollInterval   = "LOCFLOW_POLL_INTERVAL"
	EnvTickInterval   = "LOCFLOW_TICK_INTERVAL"
	EnvIdleTimeout    = "LOCFLOW_SESSION_IDLE_TIMEOUT"
	EnvMaxSessions    = "LOCFLOW_MAX_SESSIONS"
	EnvStore          = "LOCFLOW_STORE"
	EnvStoreTTL       = "LOCFLOW_STORE_TTL"
	EnvRedisAddr      = "LOCFLOW_REDIS_ADDR"
	EnvRedisPassword  = "LOCFLOW_REDIS_PASSWORD"
	EnvRedisDB        = "LOCFLOW_REDIS_DB"
	EnvSQLitePath     = "LOCFLOW_SQLITE_PATH"
	EnvAPIRateLimit   = "LOCFLOW_API_RATE_LIMIT"
	EnvAllowedOrigins = "LOCFLOW_ALLOWED_ORIGINS"
	EnvTracingEnabled = "LOCFLOW_TRACING_ENABLED"
	EnvTracingExport  = "LOCFLOW_TRACING_EXPORTER"
	EnvTracingURL     = "LOCFLOW_TRACING_ENDPOINT"
	EnvTracingSample  = "LOCFLOW_TRACING_SAMPLING_RATE"
)

// Loader applies defaults, the YAML file and the environment.
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every key Load looked at.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envList(key string, def []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, def)
}

// Load returns the validated configuration: defaults, then the strict YAML
// file, then environment overrides.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	l.mergeEnv(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Unknown keys are rejected.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- the operator chooses the config path
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Listen = l.envString(EnvListen, cfg.Listen)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Language = l.envString(EnvLanguage, cfg.Language)
	cfg.Strategy = l.envString(EnvStrategy, cfg.Strategy)

	b := &cfg.Backend
	b.URL = l.envString(EnvBackendURL, b.URL)
	b.Token = l.envString(EnvAPIToken, b.Token)
	b.Timeout = l.envDuration(EnvTimeout, b.Timeout)
	b.UploadTimeout = l.envDuration(EnvUploadTimeout, b.UploadTimeout)
	b.MaxUploadMB = l.envInt(EnvMaxUploadMB, b.MaxUploadMB)
	b.MaxRetries = l.envInt(EnvMaxRetries, b.MaxRetries)
	b.PollRetries = l.envInt(EnvPollRetries, b.PollRetries)
	b.PollInterval = l.envDuration(EnvPollInterval, b.PollInterval)

	w := &cfg.Workflow
	w.TickInterval = l.envDuration(EnvTickInterval, w.TickInterval)
	w.IdleTimeout = l.envDuration(EnvIdleTimeout, w.IdleTimeout)
	w.MaxSessions = l.envInt(EnvMaxSessions, w.MaxSessions)

	s := &cfg.Store
	s.Backend = l.envString(EnvStore, s.Backend)
	s.TTL = l.envDuration(EnvStoreTTL, s.TTL)
	s.RedisAddr = l.envString(EnvRedisAddr, s.RedisAddr)
	s.RedisPassword = l.envString(EnvRedisPassword, s.RedisPassword)
	s.RedisDB = l.envInt(EnvRedisDB, s.RedisDB)
	s.SQLitePath = l.envString(EnvSQLitePath, s.SQLitePath)

	cfg.API.RateLimit = l.envInt(EnvAPIRateLimit, cfg.API.RateLimit)
	cfg.API.AllowedOrigins = l.envList(EnvAllowedOrigins, cfg.API.AllowedOrigins)

	t := &cfg.Tracing
	t.Enabled = l.envBool(EnvTracingEnabled, t.Enabled)
	t.Exporter = l.envString(EnvTracingExport, t.Exporter)
	t.Endpoint = l.envString(EnvTracingURL, t.Endpoint)
	t.SamplingRate = l.envFloat(EnvTracingSample, t.SamplingRate)
}
