// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// Sentinel errors for errors.Is checks at the workflow boundary.
	ErrTooLarge      = errors.New("backend: payload too large")
	ErrTimeout       = errors.New("backend: request timed out")
	ErrUnavailable   = errors.New("backend: host unreachable or transport failure")
	ErrUpstream      = errors.New("backend: internal error (5xx)")
	ErrUnauthorized  = errors.New("backend: not authorized")
	ErrNotFound      = errors.New("backend: resource not found")
	ErrRejected      = errors.New("backend: request rejected")
	ErrBadResponse   = errors.New("backend: invalid response format or malformed data")
	ErrJobFailed     = errors.New("backend: localization job failed")
	ErrPollExhausted = errors.New("backend: localization job did not finish in time")
)

// APIError wraps a sentinel with the failing operation and HTTP details.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("backend: %s: %v", e.Operation, e.Sentinel)
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

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

const maxErrorBody = 256

// wrapError classifies a transport error or an HTTP status into an APIError.
func wrapError(op string, err error, status int, body []byte) error {
	sentinel := ErrUnavailable
	switch {
	case err != nil && isTimeout(err):
		sentinel = ErrTimeout
	case err != nil && errors.Is(err, ErrTooLarge):
		sentinel = ErrTooLarge
	case err != nil:
		sentinel = ErrUnavailable
	case status == http.StatusRequestEntityTooLarge:
		sentinel = ErrTooLarge
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		sentinel = ErrTimeout
	case status >= http.StatusInternalServerError:
		sentinel = ErrUpstream
	case status >= http.StatusBadRequest:
		sentinel = ErrRejected
	}

	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if sentinel == ErrUnauthorized {
		text = ""
	}
	return &APIError{Sentinel: sentinel, Operation: op, Status: status, Body: text, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// countsAgainstBreaker reports whether err indicates an unhealthy backend
// rather than a bad request.
func countsAgainstBreaker(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrUpstream) || errors.Is(err, ErrTimeout)
}
