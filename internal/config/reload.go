// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/locflow/internal/log"
)

const reloadDebounce = 300 * time.Millisecond

// ConfigHolder serves the current configuration and swaps it atomically on
// reload. An invalid file leaves the old configuration in place.
type ConfigHolder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	logger     zerolog.Logger

	listenersMu sync.Mutex
	listeners   []func(old, updated AppConfig)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewConfigHolder creates a holder around an already loaded configuration.
func NewConfigHolder(initial AppConfig, loader *Loader, configPath string) *ConfigHolder {
	return &ConfigHolder{
		current:    initial,
		loader:     loader,
		configPath: configPath,
		logger:     xglog.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnReload registers fn to run after every successful reload.
func (h *ConfigHolder) OnReload(fn func(old, updated AppConfig)) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Reload loads and validates the configuration, then swaps it in.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str(xglog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	updated, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = updated
	h.mu.Unlock()

	h.logChanges(old, updated)

	h.listenersMu.Lock()
	fns := append([]func(old, updated AppConfig){}, h.listeners...)
	h.listenersMu.Unlock()
	for _, fn := range fns {
		fn(old, updated)
	}

	h.logger.Info().Str(xglog.FieldEvent, "config.reload_success").Msg("configuration reloaded")
	return nil
}

// StartWatcher reloads on writes to the config file until ctx ends. It
// watches the directory so editors that replace the file are noticed.
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().Str(xglog.FieldEvent, "config.watcher_disabled").Msg("no config file, watcher disabled")
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(h.configPath)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	h.watcher = w
	h.done = make(chan struct{})

	h.logger.Info().
		Str(xglog.FieldEvent, "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

// Wait blocks until the watcher goroutine has exited.
func (h *ConfigHolder) Wait() {
	if h.done != nil {
		<-h.done
	}
}

func (h *ConfigHolder) watchLoop(ctx context.Context) {
	defer close(h.done)
	defer func() { _ = h.watcher.Close() }()

	target := filepath.Clean(h.configPath)
	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(reloadDebounce)
			}

		case <-timer.C:
			if err := h.Reload(ctx); err != nil {
				h.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.auto_reload_failed").Msg("automatic reload failed")
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.watcher_error").Msg("config watcher error")
		}
	}
}

func (h *ConfigHolder) logChanges(old, updated AppConfig) {
	if old.LogLevel != updated.LogLevel || old.Workflow.TickInterval != updated.Workflow.TickInterval {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.changed").
			Str("log_level", updated.LogLevel).
			Dur("tick_interval", updated.Workflow.TickInterval).
			Msg("hot-reloadable settings changed")
	}
	if old.Strategy != updated.Strategy || old.Backend.URL != updated.Backend.URL || old.Listen != updated.Listen {
		h.logger.Warn().
			Str(xglog.FieldEvent, "config.restart_required").
			Msg("listen address, strategy or backend URL changed; restart to apply")
	}
}
