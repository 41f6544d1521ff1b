// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ManuGH/m3uview/internal/config"
	"github.com/ManuGH/m3uview/internal/core/urlutil"
	"github.com/ManuGH/m3uview/internal/log"
	platformnet "github.com/ManuGH/m3uview/internal/platform/net"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the server starts.
// It never contacts the upstream: the playlist is fetched on first request.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Str("event", "startup.checks_begin").Msg("running pre-flight startup checks")

	if err := checkListenAddr(logger, cfg.Server.ListenAddr); err != nil {
		return fmt.Errorf("listen address check failed: %w", err)
	}
	if err := checkPlaylistURL(logger, cfg.PlaylistURL); err != nil {
		return fmt.Errorf("playlist url check failed: %w", err)
	}
	if err := checkProxyBase(logger, cfg.ProxyBase); err != nil {
		return fmt.Errorf("proxy base check failed: %w", err)
	}
	if cfg.Export.Path != "" {
		if err := checkExportDir(logger, filepath.Dir(cfg.Export.Path)); err != nil {
			return fmt.Errorf("export directory check failed: %w", err)
		}
	}

	logger.Info().Str("event", "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkListenAddr(logger zerolog.Logger, addr string) error {
	if addr == "" {
		return nil
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	logger.Debug().Str("addr", addr).Msg("listen address is valid")
	return nil
}

func checkPlaylistURL(logger zerolog.Logger, raw string) error {
	u, err := platformnet.ParseUpstreamURL(raw)
	if err != nil {
		return fmt.Errorf("invalid PLAYLIST_URL: %w", err)
	}
	logger.Debug().
		Str(log.FieldSource, urlutil.SanitizeURL(raw)).
		Str("host", u.Hostname()).
		Msg("playlist url is valid")
	return nil
}

// checkProxyBase only warns for an empty base. A set base must survive host
// normalization; fragments and malformed IDN hosts pass plain URL parsing.
func checkProxyBase(logger zerolog.Logger, base string) error {
	if base == "" {
		logger.Warn().
			Str("event", "startup.proxy_base_empty").
			Msg("PROXY_BASE not set; m3u8 links will be relative to this server")
		return nil
	}
	if _, err := platformnet.ParseUpstreamURL(base); err != nil {
		return fmt.Errorf("invalid PROXY_BASE: %w", err)
	}
	logger.Debug().Str(log.FieldProxyBase, urlutil.MaskURL(base)).Msg("proxy base configured")
	return nil
}

func checkExportDir(logger zerolog.Logger, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	f, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	logger.Debug().Str("path", dir).Msg("export directory is writable")
	return nil
}
