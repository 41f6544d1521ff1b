// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

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

const (
	defaultFetchTimeout = 15 * time.Second
	defaultFetchRate    = 0.2 // one upstream attempt every 5s
	defaultFetchBurst   = 3
	defaultRateLimitRPM = 120
	defaultLogService   = "m3uview"
	defaultOTLPGRPC     = "localhost:4317"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// ConfigPath returns the YAML file this loader reads, or "" for ENV-only.
func (l *Loader) ConfigPath() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates.
func (l *Loader) Load() (AppConfig, error) {
	cfg := l.defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (l *Loader) defaults() AppConfig {
	userAgent := "m3uview"
	if l.version != "" {
		userAgent += "/" + l.version
	}
	return AppConfig{
		Version:    l.version,
		LogLevel:   "info",
		LogService: defaultLogService,
		Fetch: FetchConfig{
			Timeout:   defaultFetchTimeout,
			UserAgent: userAgent,
			Rate:      defaultFetchRate,
			Burst:     defaultFetchBurst,
		},
		Cache:     CacheConfig{Backend: CacheBackendNone},
		Metrics:   MetricsConfig{Enabled: true},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: defaultRateLimitRPM},
		Tracing: TracingConfig{
			Exporter:     TracingExporterGRPC,
			Endpoint:     defaultOTLPGRPC,
			SamplingRate: 1.0,
		},
		Server: defaultServerRuntimeConfig(),
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}

	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) {
	setString(&cfg.PlaylistURL, f.PlaylistURL)
	setString(&cfg.ProxyBase, f.ProxyBase)

	if f.Log != nil {
		setString(&cfg.LogLevel, f.Log.Level)
		setString(&cfg.LogService, f.Log.Service)
	}
	if f.Fetch != nil {
		if f.Fetch.Timeout > 0 {
			cfg.Fetch.Timeout = f.Fetch.Timeout
		}
		setString(&cfg.Fetch.UserAgent, f.Fetch.UserAgent)
		setPtr(&cfg.Fetch.Rate, f.Fetch.Rate)
		setPtr(&cfg.Fetch.Burst, f.Fetch.Burst)
	}
	if f.Cache != nil {
		setString(&cfg.Cache.Backend, f.Cache.Backend)
		setPtr(&cfg.Cache.TTL, f.Cache.TTL)
	}
	if f.Redis != nil {
		setString(&cfg.Redis.Addr, f.Redis.Addr)
		setString(&cfg.Redis.Password, f.Redis.Password)
		setPtr(&cfg.Redis.DB, f.Redis.DB)
	}
	if f.Export != nil {
		setString(&cfg.Export.Path, f.Export.Path)
	}
	if f.Metrics != nil {
		setPtr(&cfg.Metrics.Enabled, f.Metrics.Enabled)
	}
	if f.RateLimit != nil {
		setPtr(&cfg.RateLimit.Enabled, f.RateLimit.Enabled)
		if f.RateLimit.RequestsPerMinute > 0 {
			cfg.RateLimit.RequestsPerMinute = f.RateLimit.RequestsPerMinute
		}
	}
	if f.Tracing != nil {
		setPtr(&cfg.Tracing.Enabled, f.Tracing.Enabled)
		setString(&cfg.Tracing.Exporter, f.Tracing.Exporter)
		setString(&cfg.Tracing.Endpoint, f.Tracing.Endpoint)
		setPtr(&cfg.Tracing.SamplingRate, f.Tracing.SamplingRate)
	}
	if s := f.Server; s != nil {
		setString(&cfg.Server.ListenAddr, s.ListenAddr)
		if s.ReadTimeout > 0 {
			cfg.Server.ReadTimeout = s.ReadTimeout
		}
		setPtr(&cfg.Server.WriteTimeout, s.WriteTimeout)
		if s.IdleTimeout > 0 {
			cfg.Server.IdleTimeout = s.IdleTimeout
		}
		if s.MaxHeaderBytes > 0 {
			cfg.Server.MaxHeaderBytes = s.MaxHeaderBytes
		}
		if s.ShutdownTimeout > 0 {
			cfg.Server.ShutdownTimeout = s.ShutdownTimeout
		}
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	// The two upstream keys keep their historical unprefixed names.
	cfg.PlaylistURL = strings.TrimSpace(l.envString("PLAYLIST_URL", cfg.PlaylistURL))
	cfg.ProxyBase = strings.TrimSpace(l.envString("PROXY_BASE", cfg.ProxyBase))

	cfg.LogLevel = l.envString("M3UVIEW_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("M3UVIEW_LOG_SERVICE", cfg.LogService)

	cfg.Fetch.Timeout = l.envDuration("M3UVIEW_FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.UserAgent = l.envString("M3UVIEW_FETCH_USER_AGENT", cfg.Fetch.UserAgent)
	cfg.Fetch.Rate = l.envFloat("M3UVIEW_FETCH_RATE", cfg.Fetch.Rate)
	cfg.Fetch.Burst = l.envInt("M3UVIEW_FETCH_BURST", cfg.Fetch.Burst)

	cfg.Cache.Backend = strings.ToLower(l.envString("M3UVIEW_CACHE_BACKEND", cfg.Cache.Backend))
	cfg.Cache.TTL = l.envDuration("M3UVIEW_CACHE_TTL", cfg.Cache.TTL)

	cfg.Redis.Addr = l.envString("M3UVIEW_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = l.envString("M3UVIEW_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = l.envInt("M3UVIEW_REDIS_DB", cfg.Redis.DB)

	cfg.Export.Path = l.envString("M3UVIEW_EXPORT_PATH", cfg.Export.Path)

	cfg.Metrics.Enabled = l.envBool("M3UVIEW_METRICS_ENABLED", cfg.Metrics.Enabled)

	cfg.RateLimit.Enabled = l.envBool("M3UVIEW_RATELIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerMinute = l.envInt("M3UVIEW_RATELIMIT_RPM", cfg.RateLimit.RequestsPerMinute)

	cfg.Tracing.Enabled = l.envBool("M3UVIEW_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = strings.ToLower(l.envString("M3UVIEW_TRACING_EXPORTER", cfg.Tracing.Exporter))
	cfg.Tracing.Endpoint = l.envString("M3UVIEW_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat("M3UVIEW_TRACING_SAMPLING", cfg.Tracing.SamplingRate)

	cfg.Server.ListenAddr = strings.TrimSpace(l.envString("M3UVIEW_LISTEN", cfg.Server.ListenAddr))
	cfg.Server.ReadTimeout = l.envDuration("M3UVIEW_SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration("M3UVIEW_SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration("M3UVIEW_SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt("M3UVIEW_SERVER_MAX_HEADER_BYTES", cfg.Server.MaxHeaderBytes)
	cfg.Server.ShutdownTimeout = l.envDuration("M3UVIEW_SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
