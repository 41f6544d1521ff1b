// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"fmt"

	"github.com/ManuGH/m3uview/internal/m3u"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// Exporter writes the proxied playlist to a file after each build.
type Exporter struct {
	path string
}

// NewExporter returns nil for an empty path, which disables export.
func NewExporter(path string) *Exporter {
	if path == "" {
		return nil
	}
	return &Exporter{path: path}
}

func (e *Exporter) Path() string { return e.path }

// Write replaces the export file atomically: fsync then rename.
func (e *Exporter) Write(entries []m3u.Attributes, logger zerolog.Logger) error {
	pendingFile, err := renameio.NewPendingFile(e.path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending export file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending export file")
		}
	}()

	if err := m3u.WriteM3U(pendingFile, entries); err != nil {
		return fmt.Errorf("write export data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace export file: %w", err)
	}
	return nil
}
