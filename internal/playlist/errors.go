// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamStatus      = errors.New("upstream: unexpected HTTP status")
	ErrTimeout             = errors.New("upstream: request timed out")
	ErrRateLimited         = errors.New("upstream: fetch rate limit exceeded")
)

const maxErrorBody = 256

// FetchError wraps one of the sentinels with the request context.
type FetchError struct {
	Sentinel error
	Source   string // sanitized source URL
	Status   int
	Body     string // first bytes of a non-2xx body
	Err      error  // lower-level cause, e.g. a net.Error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch playlist %s: %v", e.Source, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// IsFetchError reports whether err came from the upstream fetch.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func wrapTransportError(source string, err error) *FetchError {
	sentinel := ErrUpstreamUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		sentinel = ErrTimeout
	}
	// url.Error repeats the request URL, which may carry credentials.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return &FetchError{Sentinel: sentinel, Source: source, Err: err}
}

func statusError(source string, status int, body []byte) *FetchError {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}
	return &FetchError{
		Sentinel: ErrUpstreamStatus,
		Source:   source,
		Status:   status,
		Body:     snippet,
	}
}

// HTTPStatus is the response code a handler should use for a build error.
func HTTPStatus(err error) int {
	if IsFetchError(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
