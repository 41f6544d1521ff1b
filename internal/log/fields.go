// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldTvgID     = "tvg_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Playlist fields
	FieldSource     = "source"
	FieldEntries    = "entries"
	FieldGroups     = "groups"
	FieldFailures   = "failures"
	FieldEntryIndex = "entry_index"

	// Path / URL fields
	FieldPath       = "path"
	FieldProxyBase  = "proxy_base"
	FieldExportPath = "export_path"
)
