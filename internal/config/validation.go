// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/m3uview/internal/validate"
)

var httpSchemes = []string{"http", "https"}

// Validate checks a resolved AppConfig. A missing PLAYLIST_URL is reported as
// ErrPlaylistURLRequired so callers can fail startup with a clear message.
func Validate(cfg AppConfig) error {
	if strings.TrimSpace(cfg.PlaylistURL) == "" {
		return ErrPlaylistURLRequired
	}

	v := validate.New()

	v.URL("PlaylistURL", cfg.PlaylistURL, httpSchemes)
	v.OptionalURL("ProxyBase", cfg.ProxyBase, httpSchemes)

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("LogLevel", err.Error(), cfg.LogLevel)
	}

	if cfg.Fetch.Timeout <= 0 {
		v.AddError("Fetch.Timeout", "must be positive", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Rate <= 0 {
		v.AddError("Fetch.Rate", fmt.Sprintf("must be positive, got %g", cfg.Fetch.Rate), cfg.Fetch.Rate)
	}
	v.Range("Fetch.Burst", cfg.Fetch.Burst, 1, 100)

	v.OneOf("Cache.Backend", cfg.Cache.Backend, []string{CacheBackendNone, CacheBackendMemory, CacheBackendRedis})
	if cfg.Cache.TTL < 0 {
		v.AddError("Cache.TTL", "cannot be negative", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend == CacheBackendRedis {
		v.NotEmpty("Redis.Addr", cfg.Redis.Addr)
		v.Range("Redis.DB", cfg.Redis.DB, 0, 15)
	}

	v.OutputFile("Export.Path", cfg.Export.Path)

	if cfg.RateLimit.Enabled {
		v.Positive("RateLimit.RequestsPerMinute", cfg.RateLimit.RequestsPerMinute)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, []string{TracingExporterGRPC, TracingExporterHTTP})
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		v.FloatRange("Tracing.SamplingRate", cfg.Tracing.SamplingRate, 0, 1)
	}

	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	if cfg.Server.WriteTimeout < 0 {
		v.AddError("Server.WriteTimeout", "cannot be negative", cfg.Server.WriteTimeout)
	}

	return v.Err()
}
