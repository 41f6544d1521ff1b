// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"net/http"

	"github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/m3u"
	"github.com/ManuGH/m3uview/internal/playlist"
)

const (
	tvgIDParam  = "tvg-id"
	notFoundMsg = "could not find id"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.render(w, r, indexTemplate, indexPage{
		Version: s.opts.Version,
		Entries: snap.Entries,
		Groups:  snap.Groups.Buckets(),
		Skipped: len(snap.Failures),
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var entry m3u.Attributes
	found := false
	if query.Has(tvgIDParam) {
		entry, found = snap.Find(query.Get(tvgIDParam))
	}
	if !found {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Debug().
			Str(log.FieldEvent, "play.not_found").
			Str(log.FieldTvgID, query.Get(tvgIDParam)).
			Msg("no entry for requested tvg-id")
		writeText(w, http.StatusNotFound, notFoundMsg)
		return
	}
	s.render(w, r, playTemplate, newPlayPage(s.opts.Version, entry))
}

func (s *Server) handlePlaylistM3U(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := m3u.WriteM3U(&buf, snap.Entries); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", `inline; filename="playlist.m3u"`)
	_, _ = w.Write(buf.Bytes())
}

// snapshot writes the error response itself when the build fails.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*playlist.Snapshot, bool) {
	snap, err := s.store.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return snap, true
}

// render executes into a buffer so a template failure never sends a partial page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
