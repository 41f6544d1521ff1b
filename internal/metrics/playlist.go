// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics holds the Prometheus collectors for the playlist pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeStatus      = "status"
	OutcomeUnavailable = "unavailable"
	OutcomeTimeout     = "timeout"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailure     = "failure"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uview_playlist_fetch_total",
		Help: "Upstream playlist fetch attempts by outcome",
	}, []string{"outcome"}) // outcome=success|status|unavailable|timeout|rate_limited

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "m3uview_playlist_fetch_duration_seconds",
		Help:    "Duration of upstream playlist fetches",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	})

	fetchBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3uview_playlist_fetch_bytes",
		Help: "Size of the last successfully fetched playlist document",
	})

	buildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uview_playlist_build_total",
		Help: "Playlist snapshot builds by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "m3uview_playlist_build_duration_seconds",
		Help:    "Duration of playlist snapshot builds including the fetch",
		Buckets: prometheus.DefBuckets,
	})

	entriesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3uview_playlist_entries",
		Help: "Number of entries in the cached snapshot",
	})

	groupsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3uview_playlist_groups",
		Help: "Number of group-title buckets in the cached snapshot",
	})

	entryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uview_playlist_entry_failures_total",
		Help: "Playlist entries excluded from a build, by missing field",
	}, []string{"field"})

	documentCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uview_document_cache_lookups_total",
		Help: "Raw document cache lookups by backend and result",
	}, []string{"backend", "result"}) // result=hit|miss

	exportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uview_playlist_export_total",
		Help: "Writes of the exported proxied playlist by outcome",
	}, []string{"outcome"})
)

// RecordFetch records one upstream attempt. bytes is only used on success.
func RecordFetch(outcome string, d time.Duration, bytes int) {
	fetchTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeRateLimited {
		return
	}
	fetchDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		fetchBytes.Set(float64(bytes))
	}
}

// RecordBuild records a snapshot build. Entry and group gauges only move on success.
func RecordBuild(err error, d time.Duration, entries, groups int) {
	buildDuration.Observe(d.Seconds())
	if err != nil {
		buildTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	buildTotal.WithLabelValues(OutcomeSuccess).Inc()
	entriesTotal.Set(float64(entries))
	groupsTotal.Set(float64(groups))
}

// IncEntryFailure counts one excluded entry. An empty field is reported as "other".
func IncEntryFailure(field string) {
	if field == "" {
		field = "other"
	}
	entryFailuresTotal.WithLabelValues(field).Inc()
}

func RecordDocumentCache(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	documentCacheTotal.WithLabelValues(backend, result).Inc()
}

func RecordExport(err error) {
	if err != nil {
		exportTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	exportTotal.WithLabelValues(OutcomeSuccess).Inc()
}
