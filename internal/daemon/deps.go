// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

var (
	ErrMissingLogger         = errors.New("daemon: logger is required")
	ErrMissingAPIHandler     = errors.New("daemon: http handler is required")
	ErrMissingManager        = errors.New("daemon: manager is required")
	ErrManagerNotStarted     = errors.New("daemon: manager not started")
	ErrManagerAlreadyStarted = errors.New("daemon: manager already started")
)

// Deps is what the Manager needs to serve. The handler already carries
// every route, /metrics included.
type Deps struct {
	Logger     zerolog.Logger
	APIHandler http.Handler
}

// Validate rejects a disabled (zero or Nop) logger and a nil handler.
func (d *Deps) Validate() error {
	switch {
	case d.Logger.GetLevel() == zerolog.Disabled:
		return ErrMissingLogger
	case d.APIHandler == nil:
		return ErrMissingAPIHandler
	}
	return nil
}
