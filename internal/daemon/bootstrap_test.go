// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/locflow/internal/config"
	workflow "github.com/ManuGH/locflow/internal/domain/workflow/manager"
	"github.com/ManuGH/locflow/internal/log"
)

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.Listen = "127.0.0.1:0"
	cfg.Strategy = "simulated"
	cfg.Backend.URL = "http://127.0.0.1:1"
	cfg.Workflow.SweepInterval = 10 * time.Millisecond
	return cfg
}

func TestBootstrap_RunServesHealth(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	holder := config.NewConfigHolder(testConfig(), nil, "")
	app, err := Bootstrap(context.Background(), holder)
	require.NoError(t, err)
	app.reloadSignal = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	addr := boundAddr(t, app.Manager())
	code, body := get(t, "http://"+addr+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["version"])

	code, _ = get(t, "http://"+addr+"/api/v1/countries")
	assert.Equal(t, http.StatusOK, code)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestBootstrap_RejectsUnknownStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "etcd"
	_, err := Bootstrap(context.Background(), config.NewConfigHolder(cfg, nil, ""))
	assert.Error(t, err)
}

func TestControllerOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.MaxUploadMB = 10
	cfg.Workflow.LipSync = true
	cfg.Workflow.VoiceStyle = "warm"

	opts, err := ControllerOptions(cfg, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", opts.SessionID)
	assert.Equal(t, workflow.StrategySimulated, opts.Strategy)
	assert.Equal(t, int64(10<<20), opts.MaxUploadBytes)
	assert.True(t, opts.Localize.LipSync)
	assert.True(t, opts.Localize.Dubbing)
	assert.Equal(t, "warm", opts.Localize.VoiceStyle)

	cfg.Strategy = "offline"
	_, err = ControllerOptions(cfg, "s-2")
	assert.Error(t, err)
}

func TestBackendOptions(t *testing.T) {
	tokens := func(context.Context) string { return "from-store" }

	cfg := testConfig().Backend
	opts := BackendOptions(cfg, tokens)
	require.NotNil(t, opts.TokenSource)
	assert.Equal(t, "from-store", opts.TokenSource(context.Background()))
	assert.Equal(t, int64(500<<20), opts.MaxUploadBytes)

	cfg.Token = "static"
	opts = BackendOptions(cfg, tokens)
	assert.Nil(t, opts.TokenSource)
	assert.Equal(t, "static", opts.Token)
}

func TestApp_RunRequiresManager(t *testing.T) {
	app := NewApp(log.WithComponent("test"), nil, nil, nil)
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)
}
