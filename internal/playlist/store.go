// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ManuGH/m3uview/internal/cache"
	"github.com/ManuGH/m3uview/internal/core/urlutil"
	xglog "github.com/ManuGH/m3uview/internal/log"
	"github.com/ManuGH/m3uview/internal/m3u"
	"github.com/ManuGH/m3uview/internal/metrics"
	"github.com/ManuGH/m3uview/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBuildTimeout = 30 * time.Second
	buildKey            = "snapshot"
)

// Snapshot is the built playlist. It is immutable once stored.
type Snapshot struct {
	Entries  []m3u.Attributes
	Groups   *m3u.GroupIndex
	Failures []m3u.EntryError
	// Source is the sanitized upstream URL.
	Source  string
	BuiltAt time.Time
}

// Find returns the first entry with the given tvg-id.
func (s *Snapshot) Find(tvgID string) (m3u.Attributes, bool) {
	return m3u.Metadata{Entries: s.Entries}.Find(tvgID)
}

// StoreConfig wires a Store.
type StoreConfig struct {
	Source  Source
	Builder *m3u.Builder
	// Documents caches raw upstream documents; nil disables it.
	Documents   cache.Cache
	DocumentTTL time.Duration
	// Exporter is optional.
	Exporter *Exporter
	// BuildTimeout bounds one build including the fetch.
	BuildTimeout time.Duration
}

// Store builds the snapshot on first use and keeps it for the lifetime of
// the process. Concurrent cold callers share one build; a failed build is not
// kept, so the next call tries again.
type Store struct {
	source    Source
	builder   *m3u.Builder
	docs      cache.Cache
	docTTL    time.Duration
	exporter  *Exporter
	timeout   time.Duration
	sanitized string

	snap   atomic.Pointer[Snapshot]
	group  singleflight.Group
	logger zerolog.Logger
	now    func() time.Time
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Source == nil {
		return nil, errors.New("playlist store: source is required")
	}
	if cfg.Builder == nil {
		return nil, errors.New("playlist store: builder is required")
	}
	docs := cfg.Documents
	if docs == nil {
		docs = cache.NewNoOpCache()
	}
	timeout := cfg.BuildTimeout
	if timeout <= 0 {
		timeout = defaultBuildTimeout
	}
	return &Store{
		source:    cfg.Source,
		builder:   cfg.Builder,
		docs:      docs,
		docTTL:    cfg.DocumentTTL,
		exporter:  cfg.Exporter,
		timeout:   timeout,
		sanitized: urlutil.SanitizeURL(cfg.Source.URL()),
		logger:    xglog.WithComponent("playlist"),
		now:       time.Now,
	}, nil
}

// Get returns the cached snapshot, building it first if needed. The build
// is detached from ctx so one caller giving up does not fail the others;
// ctx only bounds how long this caller waits.
func (s *Store) Get(ctx context.Context) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(buildKey, func() (any, error) {
		if snap := s.snap.Load(); snap != nil {
			return snap, nil
		}
		snap, err := s.build(buildCtx)
		if err != nil {
			return nil, err
		}
		s.snap.Store(snap)
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Cached returns the snapshot without triggering a build.
func (s *Store) Cached() (*Snapshot, bool) {
	snap := s.snap.Load()
	return snap, snap != nil
}

func (s *Store) build(parent context.Context) (_ *Snapshot, err error) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	ctx, span := telemetry.Tracer("m3uview/playlist").Start(ctx, "playlist.build")
	defer span.End()

	start := s.now()
	logger := xglog.WithContext(ctx, s.logger)
	var snap *Snapshot
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordBuild(err, time.Since(start), 0, 0)
			return
		}
		metrics.RecordBuild(nil, time.Since(start), len(snap.Entries), snap.Groups.Len())
	}()

	doc, hit, err := s.document(ctx)
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes("fetch")...)
		return nil, err
	}
	span.SetAttributes(telemetry.FetchAttributes(s.sanitized, len(doc), hit)...)

	md := s.builder.Build(m3u.SplitString(doc))
	for _, f := range md.Failures {
		metrics.IncEntryFailure(f.Field())
		logger.Warn().
			Err(f.Err).
			Str("event", "playlist.entry_skipped").
			Int(xglog.FieldEntryIndex, f.Index).
			Str(xglog.FieldTvgID, f.TvgID).
			Msg("playlist entry excluded from build")
	}

	snap = &Snapshot{
		Entries:  md.Entries,
		Groups:   md.Groups,
		Failures: md.Failures,
		Source:   s.sanitized,
		BuiltAt:  s.now(),
	}
	span.SetAttributes(telemetry.BuildAttributes(len(snap.Entries), snap.Groups.Len(), len(snap.Failures))...)

	logger.Info().
		Str("event", "playlist.built").
		Str(xglog.FieldSource, s.sanitized).
		Int(xglog.FieldEntries, len(snap.Entries)).
		Int(xglog.FieldGroups, snap.Groups.Len()).
		Int(xglog.FieldFailures, len(snap.Failures)).
		Bool("document_cache_hit", hit).
		Msg("playlist snapshot built")

	s.export(snap, logger)
	return snap, nil
}

// document returns the raw playlist, from the document cache when possible.
func (s *Store) document(ctx context.Context) (string, bool, error) {
	key := s.source.URL()
	if doc, ok := s.docs.Get(ctx, key); ok {
		metrics.RecordDocumentCache(s.docs.Backend(), true)
		return doc, true, nil
	}
	if s.docs.Backend() != "none" {
		metrics.RecordDocumentCache(s.docs.Backend(), false)
	}

	doc, err := s.source.Fetch(ctx)
	if err != nil {
		return "", false, err
	}
	s.docs.Set(ctx, key, doc, s.docTTL)
	return doc, false, nil
}

func (s *Store) export(snap *Snapshot, logger zerolog.Logger) {
	if s.exporter == nil {
		return
	}
	err := s.exporter.Write(snap.Entries, logger)
	metrics.RecordExport(err)
	if err != nil {
		logger.Error().Err(err).
			Str("event", "playlist.export_failed").
			Str(xglog.FieldExportPath, s.exporter.Path()).
			Msg("failed to write exported playlist")
		return
	}
	logger.Info().
		Str("event", "playlist.exported").
		Str(xglog.FieldExportPath, s.exporter.Path()).
		Int(xglog.FieldEntries, len(snap.Entries)).
		Msg("exported proxied playlist")
}
