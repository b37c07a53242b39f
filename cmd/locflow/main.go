// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command locflow serves the campaign localization workflow API and runs
// the pipeline one-shot from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/locflow/internal/config"
	"github.com/ManuGH/locflow/internal/daemon"
	xglog "github.com/ManuGH/locflow/internal/log"
	buildinfo "github.com/ManuGH/locflow/internal/version"
)

var version = buildinfo.Version

// maskURL removes user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}

func main() {
	os.Exit(dispatch(os.Args[1:]))
}

func dispatch(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "serve":
			return runServe(args[1:])
		case "run":
			return runPipelineCLI(args[1:])
		case "config":
			return runConfigCLI(args[1:])
		case "healthcheck":
			return runHealthcheckCLI(args[1:])
		case "version", "--version", "-version":
			fmt.Println(buildinfo.String())
			return 0
		case "-h", "--help", "help":
			printUsage()
			return 0
		}
		if !strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			printUsage()
			return 2
		}
	}
	// Bare flags run the daemon.
	return runServe(args)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  locflow serve [--config config.yaml]")
	fmt.Fprintln(os.Stderr, "  locflow run --video promo.mp4 --country DE [--out campaigns.json] [--config config.yaml]")
	fmt.Fprintln(os.Stderr, "  locflow config validate|dump [--file config.yaml]")
	fmt.Fprintln(os.Stderr, "  locflow healthcheck [--port 8088]")
	fmt.Fprintln(os.Stderr, "  locflow version")
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("locflow serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "locflow",
		Version: version,
	})
	logger := xglog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	loader := config.NewLoader(path, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to load configuration")
		return 1
	}

	logger.Info().
		Str("version", version).
		Str("commit", buildinfo.Commit).
		Str("backend", maskURL(cfg.Backend.URL)).
		Str("config", path).
		Msg("configuration loaded")

	holder := config.NewConfigHolder(cfg, loader, path)
	app, err := daemon.Bootstrap(ctx, holder)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start daemon")
		return 1
	}
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("daemon exited with error")
		return 1
	}
	logger.Info().Msg("daemon stopped")
	return 0
}
