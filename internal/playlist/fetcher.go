// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package playlist fetches the upstream document and caches the built snapshot.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ManuGH/m3uview/internal/core/urlutil"
	xglog "github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/metrics"
	"github.com/ManuGH/m3uview/internal/platform/httpx"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxDocumentBytes = 64 << 20 // 64 MiB

// Source produces the raw playlist document.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	// URL identifies the document, for cache keys and logs.
	URL() string
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
	// Rate and Burst bound upstream attempts. Rate <= 0 disables the limit.
	Rate  float64
	Burst int
	// Client overrides the instrumented default client.
	Client *http.Client
}

// Fetcher performs a single GET of the upstream playlist.
type Fetcher struct {
	url       string
	source    string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = httpx.NewInstrumentedClient(cfg.Timeout)
	}
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), max(cfg.Burst, 1))
	}
	return &Fetcher{
		url:       cfg.URL,
		source:    urlutil.SanitizeURL(cfg.URL),
		userAgent: cfg.UserAgent,
		client:    client,
		limiter:   limiter,
		logger:    xglog.WithComponent("fetcher"),
	}
}

func (f *Fetcher) URL() string { return f.url }

// Fetch returns the document body. Failures are *FetchError values and are
// never retried here.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if f.limiter != nil && !f.limiter.Allow() {
		err := &FetchError{Sentinel: ErrRateLimited, Source: f.source}
		metrics.RecordFetch(metrics.OutcomeRateLimited, 0, 0)
		f.logger.Warn().Str("event", "playlist.fetch_rate_limited").Str(xglog.FieldSource, f.source).
			Msg("upstream fetch suppressed by rate limit")
		return "", err
	}

	start := time.Now()
	body, err := f.do(ctx)
	elapsed := time.Since(start)
	metrics.RecordFetch(outcome(err), elapsed, len(body))

	logger := xglog.WithContext(ctx, f.logger)
	if err != nil {
		logger.Error().Err(err).
			Str("event", "playlist.fetch_failed").
			Str(xglog.FieldSource, f.source).
			Dur("duration", elapsed).
			Msg("upstream playlist fetch failed")
		return "", err
	}

	logger.Info().
		Str("event", "playlist.fetched").
		Str(xglog.FieldSource, f.source).
		Int("bytes", len(body)).
		Dur("duration", elapsed).
		Msg("upstream playlist fetched")
	return body, nil
}

func (f *Fetcher) do(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", &FetchError{Sentinel: ErrUpstreamUnavailable, Source: f.source, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", wrapTransportError(f.source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", statusError(f.source, resp.StatusCode, snippet)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return "", wrapTransportError(f.source, fmt.Errorf("read body: %w", err))
	}
	if len(data) > maxDocumentBytes {
		return "", &FetchError{
			Sentinel: ErrUpstreamUnavailable,
			Source:   f.source,
			Err:      fmt.Errorf("document exceeds %d bytes", maxDocumentBytes),
		}
	}
	return string(data), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrRateLimited):
		return metrics.OutcomeRateLimited
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, ErrUpstreamStatus):
		return metrics.OutcomeStatus
	default:
		return metrics.OutcomeUnavailable
	}
}
