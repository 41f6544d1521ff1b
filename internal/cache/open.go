// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const memoryJanitorInterval = time.Minute

// Options selects and configures a backend.
type Options struct {
	Backend string // "none", "memory" or "redis"
	Redis   RedisConfig
}

// Open returns the backend named in opts.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Cache, error) {
	switch opts.Backend {
	case "", "none":
		return NewNoOpCache(), nil
	case "memory":
		return NewMemoryCache(memoryJanitorInterval), nil
	case "redis":
		rc, err := NewRedisCache(ctx, opts.Redis, logger)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
