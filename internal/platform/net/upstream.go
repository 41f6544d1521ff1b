// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package net validates the outbound URLs the server is configured with.
package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("scheme must be http or https")
	// ErrMissingHost is returned for URLs without an authority.
	ErrMissingHost = errors.New("missing url host")
)

// NormalizeHost lowercases a host and converts internationalized names to
// their ASCII (punycode) form. IP literals are returned in canonical form.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if strings.ContainsAny(host, "/@") {
		return "", fmt.Errorf("host must not include path or userinfo: %s", raw)
	}
	if strings.Contains(host, "%") {
		return "", fmt.Errorf("host must not include zone: %s", raw)
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	if strings.Contains(host, ":") {
		return "", fmt.Errorf("host must not include port: %s", raw)
	}
	host = strings.TrimSuffix(host, ".")
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

// ParseUpstreamURL parses an absolute http(s) URL and normalizes its host.
// Userinfo and query are preserved; fragments are rejected since they are
// never sent to the server.
func ParseUpstreamURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, ErrMissingHost
	}
	if u.Fragment != "" {
		return nil, fmt.Errorf("fragments not allowed")
	}
	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return nil, err
	}
	u.Host = joinHostPort(host, u.Port())
	return u, nil
}

func joinHostPort(host, port string) string {
	if port == "" {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}
