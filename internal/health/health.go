// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package health serves readiness state for probes and the healthcheck command.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/playlist"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const defaultCheckTimeout = 2 * time.Second

// CheckResult represents the result of a component check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReadinessResponse is the /readyz body.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    int64                  `json:"uptime_seconds"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for readiness checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs registered checkers.
type Manager struct {
	version   string
	checkers  []Checker
	startTime time.Time
	timeout   time.Duration
}

func NewManager(version string) *Manager {
	return &Manager{
		version:   version,
		startTime: time.Now(),
		timeout:   defaultCheckTimeout,
	}
}

// RegisterChecker adds a checker. Not safe for use once serving.
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// Ready runs every checker. Any unhealthy check makes the service not ready;
// degraded checks are reported but keep it ready.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
		Uptime:    int64(time.Since(m.startTime).Seconds()),
	}
	if len(m.checkers) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp.Checks = make(map[string]CheckResult, len(m.checkers))
	degraded := false
	for _, checker := range m.checkers {
		result := checker.Check(ctx)
		resp.Checks[checker.Name()] = result
		switch result.Status {
		case StatusUnhealthy:
			resp.Ready = false
		case StatusDegraded:
			degraded = true
		}
	}

	switch {
	case !resp.Ready:
		resp.Status = StatusUnhealthy
	case degraded:
		resp.Status = StatusDegraded
	}
	return resp
}

// ServeHealth is the liveness probe. It never consults the playlist or the
// upstream.
func (m *Manager) ServeHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ServeReady handles HTTP readiness check requests
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")
	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("event", "readiness.encode_error").Msg("failed to encode readiness response")
	}

	logger.Debug().
		Str("event", "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Msg("readiness check performed")
}

// SnapshotSource is satisfied by *playlist.Store.
type SnapshotSource interface {
	Cached() (*playlist.Snapshot, bool)
}

// PlaylistChecker reports whether the playlist snapshot has been built. A
// missing snapshot is degraded, not unhealthy: the first page view builds it.
type PlaylistChecker struct {
	store SnapshotSource
}

func NewPlaylistChecker(store SnapshotSource) *PlaylistChecker {
	return &PlaylistChecker{store: store}
}

func (c *PlaylistChecker) Name() string { return "playlist" }

func (c *PlaylistChecker) Check(context.Context) CheckResult {
	snap, ok := c.store.Cached()
	if !ok {
		return CheckResult{Status: StatusDegraded, Message: "snapshot not built yet"}
	}
	msg := fmt.Sprintf("%d entries in %d groups, built %s", len(snap.Entries), snap.Groups.Len(), snap.BuiltAt.UTC().Format(time.RFC3339))
	if n := len(snap.Failures); n > 0 {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("%s, %d entries skipped", msg, n)}
	}
	return CheckResult{Status: StatusHealthy, Message: msg}
}

// Pinger is satisfied by *cache.RedisCache.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// PingChecker turns a ping into a check result.
type PingChecker struct {
	name   string
	pinger Pinger
}

func NewPingChecker(name string, pinger Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: pinger}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.pinger.HealthCheck(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}

// FileChecker checks the exported playlist file.
type FileChecker struct {
	name string
	path string
}

func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string {
	return c.name
}

func (c *FileChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Written after the first build.
			return CheckResult{Status: StatusDegraded, Message: "not written yet: " + c.path}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected file, got directory"}
	}
	if info.Size() == 0 {
		return CheckResult{Status: StatusDegraded, Message: "file is empty"}
	}
	return CheckResult{Status: StatusHealthy, Message: "file exists and readable"}
}
