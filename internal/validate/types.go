// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package validate

import (
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidLogLevel is returned for names outside trace..error.
var ErrInvalidLogLevel = &Error{
	Field:   "logLevel",
	Message: "invalid log level (must be: trace, debug, info, warn, error)",
}

// ParseLogLevel maps a case-insensitive level name onto zerolog. Levels that
// would silence error logging (fatal, panic, disabled) are refused.
func ParseLogLevel(s string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.NoLevel, ErrInvalidLogLevel
	}
	if level < zerolog.TraceLevel || level > zerolog.ErrorLevel {
		return zerolog.NoLevel, ErrInvalidLogLevel
	}
	return level, nil
}
