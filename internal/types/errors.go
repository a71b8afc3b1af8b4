package types

import (
	"errors"
	"fmt"
	"strings"
)

// Domain specific errors shared across handlers and services.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")

	// ErrModelOverloaded maps the upstream "model is overloaded" condition so
	// handlers can answer 503 instead of a generic 500.
	ErrModelOverloaded = errors.New("generation model is overloaded")
)

// ValidationError reports required preference fields that were missing before
// a generation request was dispatched. No network call is made when it fires.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing preferences in request body: %s", strings.Join(e.Missing, ", "))
}

// TransportError is a network failure or non-2xx response from a collaborator API.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error (status %d)", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StructuralError means a collaborator response did not parse as the expected
// shape. Surfaced like a TransportError but logged distinctly, since it
// indicates an upstream contract violation rather than connectivity failure.
type StructuralError struct {
	Message string
	Err     error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structural error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("structural error: %s", e.Message)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// ErrAuthExpired signals that a backend call reported unauthenticated. The
// session layer reacts by invalidating the identity cache and resetting.
var ErrAuthExpired = errors.New("authentication expired")

// ErrStaleResult marks a generation completion whose sequence number is no
// longer the latest issued. Callers discard it silently.
var ErrStaleResult = errors.New("stale generation result discarded")
