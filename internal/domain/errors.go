package domain

import (
	"errors"
	"fmt"
)

// Common domain errors raised while evaluating a conversation.
var (
	// ErrMalformedRequest indicates the evaluation payload violates the
	// request contract. This is the only error class that fails a whole
	// evaluation; transport, parse, and per-turn data errors are all
	// recovered locally.
	ErrMalformedRequest = errors.New("malformed evaluation request")
)

// RequestError describes a contract violation in an evaluation request.
// It names the offending payload section so callers can report actionable
// diagnostics.
type RequestError struct {
	// Section is the payload section that failed validation.
	Section string

	// Detail is the human-readable violation description.
	Detail string
}

// Error implements the error interface for RequestError.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrMalformedRequest, e.Section, e.Detail)
}

// Unwrap allows errors.Is(err, ErrMalformedRequest) matching.
func (e *RequestError) Unwrap() error { return ErrMalformedRequest }

// NewRequestError builds a RequestError for the given payload section.
func NewRequestError(section, format string, args ...any) *RequestError {
	return &RequestError{Section: section, Detail: fmt.Sprintf(format, args...)}
}
