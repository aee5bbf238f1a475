package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the gateway.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates a missing, invalid or expired token.
// Any upstream 401 is mapped here and is fatal to the session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks a required permission.
type ErrForbidden struct {
	Permission string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: missing permission %s", e.Permission)
}

// ErrValidation indicates a validation error (bad input), caught before
// any upstream request is made.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConflict indicates a uniqueness or state conflict reported upstream.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrFieldErrors carries field-level messages from a structured upstream
// error body. Field messages are surfaced verbatim, preferred over any
// generic fallback.
type ErrFieldErrors struct {
	Fields map[string][]string
}

func (e *ErrFieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	if len(parts) == 0 {
		return "request rejected"
	}
	return strings.Join(parts, "; ")
}

// ErrUpstream indicates a non-2xx response from the academic backend that
// did not map to a more specific error.
type ErrUpstream struct {
	Op      string
	Status  int
	Message string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream %s returned %d: %s", e.Op, e.Status, e.Message)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}
