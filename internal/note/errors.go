package note

import (
	"errors"
	"fmt"
)

var (
	// ErrRewriteInProgress is returned when a second rewrite is requested
	// while one is still streaming.
	ErrRewriteInProgress = errors.New("rewrite already in progress")

	// ErrNoDocument is returned by operations that need a persisted working
	// document when none is loaded.
	ErrNoDocument = errors.New("no persisted document is open")
)

// ValidationError rejects input before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is reported by the authority when a move or rename target
// already exists. Detail carries the authority's message verbatim.
type ConflictError struct {
	Op     string
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return e.Op + ": destination already exists"
	}
	return e.Op + ": " + e.Detail
}

// TransportError covers connection failures and non-success statuses.
// Status is zero when no response was received.
type TransportError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError describes a stream record that could not be parsed.
// The stream decoder skips these; they are only logged.
type DecodeError struct {
	Record string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %q: %v", e.Record, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PartialStreamError is returned when the transport fails after some tokens
// were already applied. The partial body is kept.
type PartialStreamError struct {
	Tokens int
	Err    error
}

func (e *PartialStreamError) Error() string {
	return fmt.Sprintf("stream interrupted after %d tokens: %v", e.Tokens, e.Err)
}

func (e *PartialStreamError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}
