// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Playlist attributes
	PlaylistSourceKey   = "playlist.source"
	PlaylistBytesKey    = "playlist.bytes"
	PlaylistEntriesKey  = "playlist.entries"
	PlaylistGroupsKey   = "playlist.groups"
	PlaylistFailuresKey = "playlist.failures"
	PlaylistCacheHitKey = "playlist.document_cache_hit"

	// Entry attributes
	EntryTvgIDKey = "entry.tvg_id"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// BuildAttributes describes a finished snapshot build.
func BuildAttributes(entries, groups, failures int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(PlaylistEntriesKey, entries),
		attribute.Int(PlaylistGroupsKey, groups),
		attribute.Int(PlaylistFailuresKey, failures),
	}
}

// FetchAttributes describes the document a build started from. source should
// already be sanitized.
func FetchAttributes(source string, bytes int, cacheHit bool) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if source != "" {
		attrs = append(attrs, attribute.String(PlaylistSourceKey, source))
	}
	return append(attrs,
		attribute.Int(PlaylistBytesKey, bytes),
		attribute.Bool(PlaylistCacheHitKey, cacheHit),
	)
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
