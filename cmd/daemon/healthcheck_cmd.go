// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ManuGH/m3uview/internal/platform/httpx"
)

// runHealthcheckCLI probes a running instance; it is the container HEALTHCHECK.
func runHealthcheckCLI(args []string) int {
	return healthcheck(args, os.Stdout, os.Stderr)
}

func healthcheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", "live", "healthcheck mode: live (/healthz) or ready (/readyz)")
	port := fs.Int("port", 8080, "port to check on localhost")
	baseURL := fs.String("url", "", "base URL to check; overrides -port")
	timeout := fs.Duration("timeout", 5*time.Second, "check timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	var path string
	switch *mode {
	case "live":
		path = "/healthz"
	case "ready":
		path = "/readyz"
	default:
		_, _ = fmt.Fprintf(stderr, "unknown healthcheck mode %q (want live or ready)\n", *mode)
		return 2
	}

	base := *baseURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", *port)
	}

	client := httpx.NewClient(*timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Get(base + path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Healthcheck failed (network): %v\n", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		_, _ = fmt.Fprintf(stderr, "Healthcheck failed (status): %s\n", resp.Status)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "Healthcheck successful (%s)\n", *mode)
	return 0
}
