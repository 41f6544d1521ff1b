// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/playlist"
)

// writeError maps a build or render failure to 502 (upstream) or 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := playlist.HTTPStatus(err)
	if r.Context().Err() != nil {
		// The client went away; nobody reads the body.
		status = http.StatusServiceUnavailable
	}
	logger := log.WithContext(r.Context(), s.logger)
	logger.Error().Err(err).
		Str(log.FieldEvent, "request.failed").
		Str(log.FieldPath, r.URL.Path).
		Int("status", status).
		Msg("request failed")

	msg := http.StatusText(status)
	if status == http.StatusBadGateway {
		msg = "upstream playlist unavailable"
	}
	writeText(w, status, msg)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}
