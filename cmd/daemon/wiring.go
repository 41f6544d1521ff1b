// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/m3uview/internal/api"
	"github.com/ManuGH/m3uview/internal/cache"
	"github.com/ManuGH/m3uview/internal/config"
	"github.com/ManuGH/m3uview/internal/daemon"
	"github.com/ManuGH/m3uview/internal/health"
	xglog "github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/m3u"
	"github.com/ManuGH/m3uview/internal/playlist"
	"github.com/ManuGH/m3uview/internal/telemetry"
)

const tracingService = "m3uview-api"

// runtimeDeps is everything main wires between config and the daemon.
type runtimeDeps struct {
	handler   http.Handler
	store     *playlist.Store
	docs      cache.Cache
	telemetry *telemetry.Provider
}

func buildRuntime(ctx context.Context, cfg config.AppConfig) (_ *runtimeDeps, err error) {
	logger := xglog.WithComponent("wiring")
	rt := &runtimeDeps{}
	defer func() {
		if err != nil {
			rt.close(context.WithoutCancel(ctx))
		}
	}()

	rt.telemetry, err = telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	rt.docs, err = cache.Open(ctx, cache.Options{
		Backend: cfg.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	}, xglog.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("document cache: %w", err)
	}

	builder, err := m3u.NewBuilder(cfg.ProxyBase)
	if err != nil {
		return nil, fmt.Errorf("proxy base: %w", err)
	}

	fetcher := playlist.NewFetcher(playlist.FetcherConfig{
		URL:       cfg.PlaylistURL,
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		Rate:      cfg.Fetch.Rate,
		Burst:     cfg.Fetch.Burst,
	})

	rt.store, err = playlist.NewStore(playlist.StoreConfig{
		Source:       fetcher,
		Builder:      builder,
		Documents:    rt.docs,
		DocumentTTL:  cfg.Cache.TTL,
		Exporter:     playlist.NewExporter(cfg.Export.Path),
		BuildTimeout: cfg.Fetch.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("playlist store: %w", err)
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPlaylistChecker(rt.store))
	if rc, ok := rt.docs.(*cache.RedisCache); ok {
		hm.RegisterChecker(health.NewPingChecker("redis", rc))
	}
	if cfg.Export.Path != "" {
		hm.RegisterChecker(health.NewFileChecker("export", cfg.Export.Path))
	}

	opts := api.Options{
		Version:       cfg.Version,
		EnableMetrics: cfg.Metrics.Enabled,
	}
	if cfg.Tracing.Enabled {
		opts.TracingService = tracingService
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimitRPM = cfg.RateLimit.RequestsPerMinute
	}
	srv, err := api.New(opts, api.Deps{Store: rt.store, Health: hm})
	if err != nil {
		return nil, fmt.Errorf("api server: %w", err)
	}
	rt.handler = srv.Handler()

	logger.Info().
		Str("event", "wiring.complete").
		Str("cache_backend", rt.docs.Backend()).
		Bool("metrics", cfg.Metrics.Enabled).
		Bool("tracing", cfg.Tracing.Enabled).
		Bool("export", cfg.Export.Path != "").
		Msg("services wired")
	return rt, nil
}

// registerShutdownHooks runs LIFO: the cache closes before telemetry flushes.
func (rt *runtimeDeps) registerShutdownHooks(mgr daemon.Manager) {
	if rt.telemetry != nil {
		mgr.RegisterShutdownHook("telemetry", rt.telemetry.Shutdown)
	}
	if rt.docs != nil {
		mgr.RegisterShutdownHook("document-cache", func(context.Context) error {
			return rt.docs.Close()
		})
	}
}

func (rt *runtimeDeps) close(ctx context.Context) {
	var errs []error
	if rt.docs != nil {
		errs = append(errs, rt.docs.Close())
	}
	if rt.telemetry != nil {
		errs = append(errs, rt.telemetry.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		logger := xglog.WithComponent("wiring")
		logger.Warn().Err(err).Msg("cleanup after failed startup")
	}
}
