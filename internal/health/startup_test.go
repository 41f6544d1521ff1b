// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ManuGH/m3uview/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStartupConfig(t *testing.T) config.AppConfig {
	t.Helper()
	var cfg config.AppConfig
	cfg.PlaylistURL = "http://upstream.example/list.m3u"
	cfg.ProxyBase = "http://proxy.example"
	cfg.Server.ListenAddr = ":8080"
	cfg.Export.Path = filepath.Join(t.TempDir(), "proxied.m3u")
	return cfg
}

func TestPerformStartupChecks(t *testing.T) {
	require.NoError(t, PerformStartupChecks(context.Background(), validStartupConfig(t)))
}

func TestPerformStartupChecks_EmptyProxyBaseIsAllowed(t *testing.T) {
	cfg := validStartupConfig(t)
	cfg.ProxyBase = ""
	assert.NoError(t, PerformStartupChecks(context.Background(), cfg))
}

func TestPerformStartupChecks_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
	}{
		{"bad listen port", func(c *config.AppConfig) { c.Server.ListenAddr = ":notaport" }},
		{"listen without port", func(c *config.AppConfig) { c.Server.ListenAddr = "localhost" }},
		{"ftp playlist", func(c *config.AppConfig) { c.PlaylistURL = "ftp://upstream/list.m3u" }},
		{"playlist without host", func(c *config.AppConfig) { c.PlaylistURL = "http:///list.m3u" }},
		{"proxy base with fragment", func(c *config.AppConfig) { c.ProxyBase = "http://proxy.example/#top" }},
		{"proxy base with invalid host", func(c *config.AppConfig) { c.ProxyBase = "http://proxy_one.example" }},
		{"export dir missing", func(c *config.AppConfig) { c.Export.Path = "/nonexistent/dir/out.m3u" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStartupConfig(t)
			tt.mutate(&cfg)
			assert.Error(t, PerformStartupChecks(context.Background(), cfg))
		})
	}
}
