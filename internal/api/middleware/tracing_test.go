// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(noop.NewTracerProvider())
	})
	return exp
}

func tracedRouter(status int) http.Handler {
	r := chi.NewRouter()
	r.Use(Tracing("test-tracer"))
	handler := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(status) }
	r.Get("/play", handler)
	r.Get("/healthz", handler)
	return r
}

func attr(span tracetest.SpanStub, key string) attribute.Value {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestTracing_NamesSpanByRoute(t *testing.T) {
	exp := installRecorder(t)

	rec := httptest.NewRecorder()
	tracedRouter(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/play?tvg-id=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /play", spans[0].Name)
	assert.Equal(t, "/play", attr(spans[0], "http.route").AsString())
	assert.Equal(t, int64(200), attr(spans[0], "http.status_code").AsInt64())
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exp := installRecorder(t)

	tracedRouter(http.StatusBadGateway).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/play", nil))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_ClientErrorIsNotAnError(t *testing.T) {
	exp := installRecorder(t)

	tracedRouter(http.StatusNotFound).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/play", nil))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestTracing_SkipsProbes(t *testing.T) {
	exp := installRecorder(t)

	rec := httptest.NewRecorder()
	tracedRouter(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, exp.GetSpans())
}
