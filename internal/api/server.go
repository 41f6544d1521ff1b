// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the playlist browser, the player page and the probes.
package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/ManuGH/m3uview/internal/api/middleware"
	"github.com/ManuGH/m3uview/internal/health"
	"github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/playlist"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ErrMissingStore  = errors.New("api: playlist store is required")
	ErrMissingHealth = errors.New("api: health manager is required")
)

// SnapshotStore is satisfied by *playlist.Store.
type SnapshotStore interface {
	Get(ctx context.Context) (*playlist.Snapshot, error)
}

// Options are the server's tunables.
type Options struct {
	Version        string
	EnableMetrics  bool
	TracingService string
	RateLimitRPM   int
	CSP            string
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Store  SnapshotStore
	Health *health.Manager
}

// Server owns the router and the parsed templates.
type Server struct {
	opts   Options
	store  SnapshotStore
	health *health.Manager
	pages  *template.Template
	logger zerolog.Logger
}

func New(opts Options, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, ErrMissingStore
	}
	if deps.Health == nil {
		return nil, ErrMissingHealth
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		opts:   opts,
		store:  deps.Store,
		health: deps.Health,
		pages:  pages,
		logger: log.WithComponent("api"),
	}, nil
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		CSP:                   s.opts.CSP,
		EnableMetrics:         s.opts.EnableMetrics,
		TracingService:        s.opts.TracingService,
		EnableLogging:         true,
		RateLimitRPM:          s.opts.RateLimitRPM,
	})
	s.registerProbeRoutes(r)
	s.registerPlaylistRoutes(r)
	return r
}

func (s *Server) registerProbeRoutes(r chi.Router) {
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	if s.opts.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
}

func (s *Server) registerPlaylistRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Get("/play", s.handlePlay)
	r.Get("/playlist.m3u", s.handlePlaylistM3U)
	r.Handle("/static/*", staticHandler())
}
