// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/locflow/internal/backend"
	"github.com/ManuGH/locflow/internal/catalog"
	"github.com/ManuGH/locflow/internal/config"
	"github.com/ManuGH/locflow/internal/daemon"
	"github.com/ManuGH/locflow/internal/domain/workflow/manager"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/domain/workflow/progress"
	"github.com/ManuGH/locflow/internal/export"
	xglog "github.com/ManuGH/locflow/internal/log"
)

const completionPoll = 100 * time.Millisecond

// pipelineParams are the inputs of a one-shot run.
type pipelineParams struct {
	Video       string
	Country     string
	Description string
	Objective   string
	// Wait bounds how long localization may take before giving up.
	Wait time.Duration
}

func runPipelineCLI(args []string) int {
	fs := flag.NewFlagSet("locflow run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var p pipelineParams
	configPath := fs.String("config", "", "path to config file (YAML)")
	out := fs.String("out", "", "write the campaign export here (default stdout)")
	simulated := fs.Bool("simulated", false, "use the simulated strategy regardless of config")
	fs.StringVar(&p.Video, "video", "", "video file to localize")
	fs.StringVar(&p.Country, "country", "", "target country code, e.g. DE")
	fs.StringVar(&p.Description, "description", "", "optional video description")
	fs.StringVar(&p.Objective, "objective", "", "campaign objective (default awareness)")
	fs.DurationVar(&p.Wait, "wait", 10*time.Minute, "maximum time to wait for localization")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(p.Video) == "" || strings.TrimSpace(p.Country) == "" {
		fmt.Fprintln(os.Stderr, "Error: --video and --country are required")
		return 2
	}

	cfg, err := config.NewLoader(strings.TrimSpace(*configPath), version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if *simulated {
		cfg.Strategy = string(manager.StrategySimulated)
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
		Service: "locflow",
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClientWithOptions(cfg.Backend.URL, daemon.BackendOptions(cfg.Backend, nil))
	st, err := runPipeline(ctx, client, cfg, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	doc := export.FromState(st, time.Now())
	if *out == "" || *out == "-" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	if err := export.WriteJSON(ctx, *out, doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Wrote %d campaign records to %s\n", len(doc.Campaigns), *out)
	return 0
}

// runPipeline drives one controller through all four steps. Localization is
// confirmed as soon as every task completes.
func runPipeline(ctx context.Context, b ports.Backend, cfg config.AppConfig, p pipelineParams) (model.State, error) {
	logger := xglog.WithComponent("run")

	country, ok := catalog.New(b, time.Minute).Lookup(ctx, p.Country)
	if !ok {
		return model.State{}, fmt.Errorf("unsupported country %q", p.Country)
	}

	opts, err := daemon.ControllerOptions(cfg, "cli")
	if err != nil {
		return model.State{}, err
	}
	ctrl := manager.New(b, opts)
	defer ctrl.Close()

	if err := ctrl.SelectCountry(country); err != nil {
		return model.State{}, err
	}

	f, err := os.Open(p.Video)
	if err != nil {
		return model.State{}, fmt.Errorf("open video: %w", err)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return model.State{}, fmt.Errorf("stat video: %w", err)
	}

	up := manager.Upload{
		Filename:    filepath.Base(p.Video),
		ContentType: contentTypeFor(p.Video),
		Size:        info.Size(),
		Body:        f,
		Description: p.Description,
	}
	if err := ctrl.Submit(ctx, up); err != nil {
		return ctrl.Snapshot(), err
	}
	logger.Info().Str(xglog.FieldCountryCode, country.Code).Msg("analysis ready")

	if err := ctrl.Continue(); err != nil {
		return ctrl.Snapshot(), err
	}
	if err := waitLocalized(ctx, ctrl, p.Wait); err != nil {
		return ctrl.Snapshot(), err
	}
	if err := ctrl.ConfirmLocalization(); err != nil {
		return ctrl.Snapshot(), err
	}
	if err := ctrl.GenerateCampaigns(ctx, p.Objective); err != nil {
		return ctrl.Snapshot(), err
	}

	st := ctrl.Snapshot()
	if st.Error != "" {
		logger.Warn().Str(xglog.FieldErrorKind, string(st.ErrorKind)).Msg(st.Error)
	}
	return st, nil
}

var errLocalizationFailed = errors.New("localization failed")

// waitLocalized polls the snapshot until every task completed, a task
// failed, or wait elapses.
func waitLocalized(ctx context.Context, ctrl *manager.Controller, wait time.Duration) error {
	if wait <= 0 {
		wait = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(completionPoll)
	defer ticker.Stop()
	for {
		st := ctrl.Snapshot()
		if progress.IsComplete(st.Progress) {
			return nil
		}
		if st.Error != "" && !progress.Active(st.Progress) {
			return fmt.Errorf("%w: %s", errLocalizationFailed, st.Error)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for localization: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
