// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example.COM", "example.com"},
		{"example.com.", "example.com"},
		{"bücher.example", "xn--bcher-kva.example"},
		{"127.0.0.1", "127.0.0.1"},
		{"[::1]", "::1"},
	}
	for _, tt := range tests {
		got, err := NormalizeHost(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeHost_Rejects(t *testing.T) {
	for _, in := range []string{"", "  ", "user@host", "host/path", "host:8080", "fe80::1%eth0"} {
		_, err := NormalizeHost(in)
		assert.Error(t, err, in)
	}
}

func TestParseUpstreamURL(t *testing.T) {
	u, err := ParseUpstreamURL(" HTTP://user:pw@Bücher.example:8080/get.php?token=abc ")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "xn--bcher-kva.example:8080", u.Host)
	assert.Equal(t, "token=abc", u.RawQuery)
	assert.Equal(t, "user", u.User.Username())

	u, err = ParseUpstreamURL("https://[::1]/list.m3u")
	require.NoError(t, err)
	assert.Equal(t, "[::1]", u.Host)
}

func TestParseUpstreamURL_Rejects(t *testing.T) {
	_, err := ParseUpstreamURL("ftp://upstream/list.m3u")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = ParseUpstreamURL("http:///list.m3u")
	assert.ErrorIs(t, err, ErrMissingHost)

	_, err = ParseUpstreamURL("/relative/list.m3u")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = ParseUpstreamURL("http://upstream/list.m3u#frag")
	assert.Error(t, err)
}
