// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/m3uview/internal/config"
	"github.com/ManuGH/m3uview/internal/daemon"
	"github.com/ManuGH/m3uview/internal/health"
	xglog "github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(runHealthcheckCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "m3uview",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, path).
		Msg("configuration loaded")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
	}

	serverCfg, err := config.ServerConfigFor(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "config.server_invalid").Msg("invalid server configuration")
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "startup.wiring_failed").Msg("failed to wire services")
	}

	mgr, err := daemon.NewManager(serverCfg, daemon.Deps{
		Logger:     logger,
		APIHandler: rt.handler,
	})
	if err != nil {
		rt.close(context.Background())
		logger.Fatal().Err(err).Str("event", "daemon.init_failed").Msg("failed to create daemon manager")
	}
	rt.registerShutdownHooks(mgr)

	holder := config.NewConfigHolder(cfg, loader)
	app := daemon.NewApp(logger, mgr, holder)
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "daemon.exit_error").Msg("daemon exited with error")
		os.Exit(1)
	}
	logger.Info().Str("event", "daemon.exit").Msg("daemon exited")
}
