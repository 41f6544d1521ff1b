// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/m3uview/internal/config"
	"github.com/ManuGH/m3uview/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// App owns the runtime around the server: the config watcher, SIGHUP reloads
// and applying reloaded settings. Server lifecycle is delegated to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	reloadSignal os.Signal
	apply        func(config.AppConfig)
}

// NewApp creates a new App orchestrator. cfgHolder may be nil.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder) *App {
	a := &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
	}
	a.apply = a.applyConfig
	return a
}

// Run blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		// Best effort: a missing watcher only disables hot reload.
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.cfgHolder.Stop()

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.apply(cfg)
				}
			}
		})

		if a.reloadSignal != nil {
			g.Go(func() error { return a.watchReloadSignal(ctx) })
		}
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}

func (a *App) watchReloadSignal(ctx context.Context) error {
	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, a.reloadSignal)
	defer signal.Stop(hupChan)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hupChan:
			a.logger.Info().
				Str("event", "config.reload_signal").
				Str("signal", a.reloadSignal.String()).
				Msg("received reload signal, reloading config")

			if err := a.cfgHolder.Reload(ctx); err != nil {
				a.logger.Warn().
					Err(err).
					Str("event", "config.reload_failed").
					Msg("config reload failed")
			}
		}
	}
}

// applyConfig applies the settings that may change at runtime. Only the log
// level qualifies; the playlist snapshot is never rebuilt.
func (a *App) applyConfig(cfg config.AppConfig) {
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		a.logger.Warn().Err(err).Str("event", "config.apply_failed").Msg("invalid log level in reloaded config")
		return
	}
	a.logger.Info().
		Str("event", "config.applied").
		Str("log_level", cfg.LogLevel).
		Msg("applied reloaded configuration")
}
