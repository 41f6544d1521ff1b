// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads m3uview configuration.
//
// Precedence is ENV > YAML file > defaults. The file is parsed strictly: unknown
// keys and multiple documents are rejected. Validate runs last.
package config
