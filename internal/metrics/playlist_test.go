// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/m3uview/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	promhttp.Handler().ServeHTTP(recorder, req)
	return recorder.Body.String()
}

func gather(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %q not registered", name)
	return nil
}

func counterValue(mf *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestPromhttpExposure(t *testing.T) {
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestRecordFetch(t *testing.T) {
	before := counterValue(gather(t, "m3uview_playlist_fetch_total"), map[string]string{"outcome": metrics.OutcomeSuccess})

	metrics.RecordFetch(metrics.OutcomeSuccess, 120*time.Millisecond, 2048)
	metrics.RecordFetch(metrics.OutcomeTimeout, 15*time.Second, 0)
	metrics.RecordFetch(metrics.OutcomeRateLimited, 0, 0)

	after := counterValue(gather(t, "m3uview_playlist_fetch_total"), map[string]string{"outcome": metrics.OutcomeSuccess})
	assert.InDelta(t, 1, after-before, 1e-9)

	body := scrape(t)
	assert.Contains(t, body, `m3uview_playlist_fetch_total{outcome="timeout"}`)
	assert.Contains(t, body, `m3uview_playlist_fetch_total{outcome="rate_limited"}`)
	assert.Contains(t, body, "m3uview_playlist_fetch_bytes 2048")
	assert.Contains(t, body, "m3uview_playlist_fetch_duration_seconds_bucket")
}

func TestRecordBuild(t *testing.T) {
	metrics.RecordBuild(nil, time.Second, 12, 3)
	metrics.RecordBuild(errors.New("upstream down"), time.Second, 99, 99)

	body := scrape(t)
	assert.Contains(t, body, "m3uview_playlist_entries 12")
	assert.Contains(t, body, "m3uview_playlist_groups 3")
	assert.Contains(t, body, `m3uview_playlist_build_total{outcome="failure"}`)
}

func TestIncEntryFailure(t *testing.T) {
	mf := gather(t, "m3uview_playlist_entry_failures_total")
	before := counterValue(mf, map[string]string{"field": "tvg-id"})

	metrics.IncEntryFailure("tvg-id")
	metrics.IncEntryFailure("")

	mf = gather(t, "m3uview_playlist_entry_failures_total")
	assert.InDelta(t, 1, counterValue(mf, map[string]string{"field": "tvg-id"})-before, 1e-9)
	assert.True(t, strings.Contains(scrape(t), `field="other"`))
}

func TestRecordDocumentCacheAndExport(t *testing.T) {
	metrics.RecordDocumentCache("memory", true)
	metrics.RecordDocumentCache("memory", false)
	metrics.RecordExport(nil)
	metrics.RecordExport(errors.New("disk full"))

	body := scrape(t)
	assert.Contains(t, body, `m3uview_document_cache_lookups_total{backend="memory",result="hit"}`)
	assert.Contains(t, body, `m3uview_document_cache_lookups_total{backend="memory",result="miss"}`)
	assert.Contains(t, body, `m3uview_playlist_export_total{outcome="success"}`)
	assert.Contains(t, body, `m3uview_playlist_export_total{outcome="failure"}`)
}
