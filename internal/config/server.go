// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// It must cover a cold build, which includes the upstream fetch.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	defaultListenAddr      = ":8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
	minShutdownTimeout     = 3 * time.Second
)

// BindListenAddr replaces the host part of a listen address when it is of the
// form ":PORT" or empty. Explicit host:port values are left untouched.
// Supports "if:<name>" to bind to the first non-loopback IPv4 of an interface.
func BindListenAddr(listenAddr, bind string) (string, error) {
	if bind == "" {
		return listenAddr, nil
	}
	if listenAddr != "" && listenAddr[0] != ':' {
		return listenAddr, nil
	}

	port := listenAddr
	if port == "" {
		port = ":0"
	}

	host := bind
	if ifName, ok := strings.CutPrefix(bind, "if:"); ok && ifName != "" {
		ip, err := firstIPv4(ifName)
		if err != nil {
			return "", err
		}
		host = ip
	}

	return net.JoinHostPort(host, port[1:]), nil
}

func firstIPv4(ifName string) (string, error) {
	iface, err := net.InterfaceByName(ifName)
	if err != nil {
		return "", fmt.Errorf("resolve interface %q: %w", ifName, err)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("list addrs for %q: %w", ifName, err)
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() || ip.To4() == nil {
			continue
		}
		return ip.String(), nil
	}
	return "", fmt.Errorf("no suitable IPv4 on interface %q", ifName)
}

// ServerConfigFor resolves the HTTP server settings from an AppConfig, applying
// M3UVIEW_BIND and the shutdown floor.
func ServerConfigFor(cfg AppConfig) (ServerConfig, error) {
	rt := cfg.Server
	listen, err := BindListenAddr(rt.ListenAddr, strings.TrimSpace(ParseString("M3UVIEW_BIND", "")))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("bind listen address: %w", err)
	}

	maxHeaderBytes := rt.MaxHeaderBytes
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = defaultMaxHeaderBytes
	}
	shutdownTimeout := max(rt.ShutdownTimeout, minShutdownTimeout)

	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     rt.ReadTimeout,
		WriteTimeout:    rt.WriteTimeout,
		IdleTimeout:     rt.IdleTimeout,
		MaxHeaderBytes:  maxHeaderBytes,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func defaultServerRuntimeConfig() ServerRuntimeConfig {
	return ServerRuntimeConfig{
		ListenAddr:      defaultListenAddr,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		IdleTimeout:     defaultIdleTimeout,
		MaxHeaderBytes:  defaultMaxHeaderBytes,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}
