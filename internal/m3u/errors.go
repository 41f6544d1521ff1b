// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package m3u

import (
	"errors"
	"fmt"
)

// ErrMissingField matches every MissingFieldError.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError reports an attribute a derived value depends on.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// EntryError records an entry that was left out of a build.
type EntryError struct {
	// Index is the zero-based position of the group in the document.
	Index int
	// TvgID is the entry id if the group had one.
	TvgID string
	Err   error
}

func (e EntryError) Error() string {
	if e.TvgID != "" {
		return fmt.Sprintf("entry %d (tvg-id %q): %v", e.Index, e.TvgID, e.Err)
	}
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e EntryError) Unwrap() error { return e.Err }

// Field returns the missing attribute name, or "" for other failures.
func (e EntryError) Field() string {
	var mf *MissingFieldError
	if errors.As(e.Err, &mf) {
		return mf.Field
	}
	return ""
}
