// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolder_ReloadKeepsOldOnError(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n")
	l := NewLoader(path, "")
	initial, err := l.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, l, path)

	var calls atomic.Int32
	h.OnReload(func(old, updated AppConfig) {
		calls.Add(1)
		assert.Equal(t, "info", old.LogLevel)
		assert.Equal(t, "debug", updated.LogLevel)
	})

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, "debug", h.Get().LogLevel)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\nbogus: 1\n"), 0o600))
	assert.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "debug", h.Get().LogLevel)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConfigHolder_Watcher(t *testing.T) {
	path := writeConfig(t, "workflow:\n  tickInterval: 500ms\n")
	l := NewLoader(path, "")
	initial, err := l.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, l, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.Wait()
	}()
	require.NoError(t, h.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("workflow:\n  tickInterval: 100ms\n"), 0o600))
	require.Eventually(t, func() bool {
		return h.Get().Workflow.TickInterval == 100*time.Millisecond
	}, 5*time.Second, 20*time.Millisecond)
}

func TestConfigHolder_NoPathNoWatcher(t *testing.T) {
	h := NewConfigHolder(Defaults(), NewLoader("", ""), "")
	require.NoError(t, h.StartWatcher(context.Background()))
	h.Wait()
}
