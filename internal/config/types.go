// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// Cache backends for the raw playlist document.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Trace exporters.
const (
	TracingExporterGRPC = "grpc"
	TracingExporterHTTP = "http"
)

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version string

	// PlaylistURL is the upstream M3U document. Required.
	PlaylistURL string
	// ProxyBase is the base URL of the header-rewriting HLS proxy. Empty yields
	// relative /playlist.m3u8 links.
	ProxyBase string

	LogLevel   string
	LogService string

	Fetch     FetchConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Export    ExportConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Server    ServerRuntimeConfig
}

// FetchConfig controls the upstream playlist request.
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
	// Rate is the sustained number of upstream attempts per second.
	Rate  float64
	Burst int
}

// CacheConfig selects where raw playlist documents are kept between builds.
type CacheConfig struct {
	Backend string
	// TTL of a cached document; 0 keeps it until eviction.
	TTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ExportConfig enables writing the proxied playlist to disk after each build.
type ExportConfig struct {
	Path string
}

type MetricsConfig struct {
	Enabled bool
}

// RateLimitConfig is the per-client inbound limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// ServerRuntimeConfig holds the HTTP server knobs that can be set from YAML.
type ServerRuntimeConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// FileConfig is the on-disk YAML shape. Pointers distinguish "unset" from zero.
type FileConfig struct {
	PlaylistURL string `yaml:"playlistUrl,omitempty"`
	ProxyBase   string `yaml:"proxyBase,omitempty"`

	Log       *LogFileConfig       `yaml:"log,omitempty"`
	Fetch     *FetchFileConfig     `yaml:"fetch,omitempty"`
	Cache     *CacheFileConfig     `yaml:"cache,omitempty"`
	Redis     *RedisFileConfig     `yaml:"redis,omitempty"`
	Export    *ExportFileConfig    `yaml:"export,omitempty"`
	Metrics   *MetricsFileConfig   `yaml:"metrics,omitempty"`
	RateLimit *RateLimitFileConfig `yaml:"rateLimit,omitempty"`
	Tracing   *TracingFileConfig   `yaml:"tracing,omitempty"`
	Server    *ServerFileConfig    `yaml:"server,omitempty"`
}

type LogFileConfig struct {
	Level   string `yaml:"level,omitempty"`
	Service string `yaml:"service,omitempty"`
}

type FetchFileConfig struct {
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	UserAgent string        `yaml:"userAgent,omitempty"`
	Rate      *float64      `yaml:"rate,omitempty"`
	Burst     *int          `yaml:"burst,omitempty"`
}

type CacheFileConfig struct {
	Backend string         `yaml:"backend,omitempty"`
	TTL     *time.Duration `yaml:"ttl,omitempty"`
}

type RedisFileConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       *int   `yaml:"db,omitempty"`
}

type ExportFileConfig struct {
	Path string `yaml:"path,omitempty"`
}

type MetricsFileConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

type RateLimitFileConfig struct {
	Enabled           *bool `yaml:"enabled,omitempty"`
	RequestsPerMinute int   `yaml:"requestsPerMinute,omitempty"`
}

type TracingFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

type ServerFileConfig struct {
	ListenAddr      string         `yaml:"listenAddr,omitempty"`
	ReadTimeout     time.Duration  `yaml:"readTimeout,omitempty"`
	WriteTimeout    *time.Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout     time.Duration  `yaml:"idleTimeout,omitempty"`
	MaxHeaderBytes  int            `yaml:"maxHeaderBytes,omitempty"`
	ShutdownTimeout time.Duration  `yaml:"shutdownTimeout,omitempty"`
}
