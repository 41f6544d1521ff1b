// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLogsRequestHandled(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Level: "debug", Service: "test"})
	defer Configure(Config{})

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/play?tvg-id=1", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "rid-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request.handled", entry[FieldEvent])
	assert.Equal(t, "/play", entry[FieldPath])
	assert.Equal(t, "rid-1", entry[FieldRequestID])
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, len("short and stout"), entry["bytes"])
	assert.Equal(t, "test", entry["service"])
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("loud"))
	assert.NoError(t, SetLevel("info"))
}
