// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLevel(t *testing.T, path, level string) {
	t.Helper()
	content := "playlistUrl: http://upstream.example/list.m3u\nlog:\n  level: " + level + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestHolder(t *testing.T) (*ConfigHolder, string) {
	t.Helper()
	t.Setenv("PLAYLIST_URL", "")
	t.Setenv("M3UVIEW_LOG_LEVEL", "")
	path := writeConfigFile(t, "")
	writeLevel(t, path, "info")

	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)
	return NewConfigHolder(initial, loader), path
}

func TestConfigHolder_ReloadNotifiesListeners(t *testing.T) {
	holder, path := newTestHolder(t)
	assert.Equal(t, "info", holder.Get().LogLevel)

	ch := make(chan AppConfig, 1)
	holder.RegisterListener(ch)

	writeLevel(t, path, "debug")
	require.NoError(t, holder.Reload(context.Background()))

	assert.Equal(t, "debug", holder.Get().LogLevel)
	select {
	case got := <-ch:
		assert.Equal(t, "debug", got.LogLevel)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestConfigHolder_InvalidReloadKeepsCurrent(t *testing.T) {
	holder, path := newTestHolder(t)

	writeLevel(t, path, "shouting")
	err := holder.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, "info", holder.Get().LogLevel)
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	holder, path := newTestHolder(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, holder.StartWatcher(ctx))
	defer holder.Stop()

	writeLevel(t, path, "warn")

	assert.Eventually(t, func() bool {
		return holder.Get().LogLevel == "warn"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestConfigHolder_WatcherDisabledWithoutFile(t *testing.T) {
	holder := NewConfigHolder(AppConfig{}, NewLoader("", ""))
	require.NoError(t, holder.StartWatcher(context.Background()))
	holder.Stop()
}
