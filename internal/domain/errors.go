package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors checkable with errors.Is.
var (
	// ErrUnknownFormat is returned when a file's format cannot be resolved
	// from its extension and no explicit override was given.
	ErrUnknownFormat = errors.New("docship: unknown input format")

	// ErrAttemptsExhausted is returned when a batch could not be delivered
	// within the configured attempt budget. It aborts the whole run.
	ErrAttemptsExhausted = errors.New("docship: delivery attempts exhausted")
)

// InputError reports an unusable input: a missing or unreadable file, or an
// unresolvable format. It is fatal and never retried.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ParseError reports a malformed record. It terminates the chunk stream;
// records are never silently skipped.
type ParseError struct {
	Format Format
	Record uint64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s record %d: %v", e.Format, e.Record, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx response from the remote endpoint. It is
// retried with backoff until the attempt budget runs out.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}
