// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/m3uview/internal/cache"
	"github.com/ManuGH/m3uview/internal/m3u"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `#EXTM3U
#EXTINF:-1 tvg-id="news1" tvg-name="News One" group-title="News",News One
http://upstream/news1.m3u8

#EXTINF:-1 tvg-id="sport1" group-title="Sport",Sport One
#EXTVLCOPT:http-referrer=http://ref
http://upstream/sport1.m3u8

#EXTINF:-1 tvg-name="No Id",Broken
http://upstream/broken.m3u8
`

// fakeSource counts fetches and can block or fail on demand.
type fakeSource struct {
	url   string
	doc   string
	err   error
	gate  chan struct{}
	calls atomic.Int32
	mu    sync.Mutex
}

func (f *fakeSource) URL() string { return f.url }

func (f *fakeSource) Fetch(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.doc, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func newTestStore(t *testing.T, src Source, mutate func(*StoreConfig)) *Store {
	t.Helper()
	b, err := m3u.NewBuilder("http://proxy.local")
	require.NoError(t, err)
	cfg := StoreConfig{Source: src, Builder: b}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewStore(cfg)
	require.NoError(t, err)
	return s
}

func TestNewStore_RequiresSourceAndBuilder(t *testing.T) {
	_, err := NewStore(StoreConfig{})
	require.Error(t, err)

	_, err = NewStore(StoreConfig{Source: &fakeSource{}})
	require.Error(t, err)
}

func TestStore_LazyBuildAndReuse(t *testing.T) {
	src := &fakeSource{url: "http://upstream/list.m3u", doc: sampleDocument}
	s := newTestStore(t, src, nil)

	_, ok := s.Cached()
	assert.False(t, ok)
	assert.Zero(t, src.calls.Load(), "construction must not fetch")

	snap, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, []string{"News", "Sport"}, snap.Groups.Titles())
	assert.Equal(t, "http://upstream/list.m3u", snap.Source)
	assert.False(t, snap.BuiltAt.IsZero())

	again, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, again)
	assert.Equal(t, int32(1), src.calls.Load())

	cached, ok := s.Cached()
	assert.True(t, ok)
	assert.Same(t, snap, cached)
}

func TestStore_RecordsEntryFailures(t *testing.T) {
	s := newTestStore(t, &fakeSource{url: "u", doc: sampleDocument}, nil)

	snap, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Failures, 1)
	assert.Equal(t, 2, snap.Failures[0].Index)
	assert.True(t, errors.Is(snap.Failures[0].Err, m3u.ErrMissingField))
}

func TestStore_Find(t *testing.T) {
	s := newTestStore(t, &fakeSource{url: "u", doc: sampleDocument}, nil)
	snap, err := s.Get(context.Background())
	require.NoError(t, err)

	entry, ok := snap.Find("sport1")
	require.True(t, ok)
	assert.Equal(t, "http://ref", entry[m3u.KeyHTTPReferrer])
	assert.True(t, strings.HasPrefix(entry[m3u.KeyM3U8], "http://proxy.local/playlist.m3u8?url="))

	_, ok = snap.Find("missing")
	assert.False(t, ok)
}

func TestStore_ConcurrentColdCallersShareOneBuild(t *testing.T) {
	src := &fakeSource{url: "u", doc: sampleDocument, gate: make(chan struct{})}
	s := newTestStore(t, src, nil)

	const callers = 16
	results := make([]*Snapshot, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := s.Get(context.Background())
			assert.NoError(t, err)
			results[i] = snap
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, snap := range results {
		assert.Same(t, results[0], snap)
	}
}

func TestStore_FailedBuildIsRetried(t *testing.T) {
	upstreamErr := &FetchError{Sentinel: ErrUpstreamStatus, Source: "u", Status: 500}
	src := &fakeSource{url: "u", doc: sampleDocument, err: upstreamErr}
	s := newTestStore(t, src, nil)

	_, err := s.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	_, ok := s.Cached()
	assert.False(t, ok, "failed build must not be cached")

	src.setErr(nil)
	snap, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestStore_CallerCancellationDoesNotAbortBuild(t *testing.T) {
	src := &fakeSource{url: "u", doc: sampleDocument, gate: make(chan struct{})}
	s := newTestStore(t, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Get(ctx)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(src.gate)
	require.Eventually(t, func() bool {
		_, ok := s.Cached()
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestStore_BuildTimeout(t *testing.T) {
	src := &fakeSource{url: "u", doc: sampleDocument, gate: make(chan struct{})}
	defer close(src.gate)
	s := newTestStore(t, src, func(c *StoreConfig) { c.BuildTimeout = 50 * time.Millisecond })

	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_DocumentCacheHitSkipsFetch(t *testing.T) {
	docs := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = docs.Close() })
	docs.Set(context.Background(), "http://upstream/list.m3u", sampleDocument, 0)

	src := &fakeSource{url: "http://upstream/list.m3u", err: errors.New("must not be called")}
	s := newTestStore(t, src, func(c *StoreConfig) { c.Documents = docs })

	snap, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Zero(t, src.calls.Load())
}

func TestStore_DocumentCacheFilledOnMiss(t *testing.T) {
	docs := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = docs.Close() })

	src := &fakeSource{url: "http://upstream/list.m3u", doc: sampleDocument}
	s := newTestStore(t, src, func(c *StoreConfig) {
		c.Documents = docs
		c.DocumentTTL = time.Minute
	})

	_, err := s.Get(context.Background())
	require.NoError(t, err)

	doc, ok := docs.Get(context.Background(), "http://upstream/list.m3u")
	require.True(t, ok)
	assert.Equal(t, sampleDocument, doc)
}

func TestStore_ExportsAfterBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxied.m3u")
	s := newTestStore(t, &fakeSource{url: "u", doc: sampleDocument}, func(c *StoreConfig) {
		c.Exporter = NewExporter(path)
	})

	_, err := s.Get(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "#EXTM3U\n"))
	assert.Contains(t, out, `tvg-id="news1"`)
	assert.Contains(t, out, "http://proxy.local/playlist.m3u8?url=")
	assert.NotContains(t, out, "broken.m3u8")
}

func TestStore_ExportFailureDoesNotFailBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "proxied.m3u")
	s := newTestStore(t, &fakeSource{url: "u", doc: sampleDocument}, func(c *StoreConfig) {
		c.Exporter = NewExporter(path)
	})

	snap, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
}

func TestNewExporter_EmptyPathDisables(t *testing.T) {
	assert.Nil(t, NewExporter(""))
}
