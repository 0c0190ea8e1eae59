package processor

import (
	"context"
	"errors"
	"time"
)

// Class separates failures worth retrying from failures that are not.
type Class string

const (
	ClassTransient Class = "transient"
	ClassTerminal  Class = "terminal"
)

// Error wraps a processing failure with its retry classification.
type Error struct {
	Class Class
	Err   error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Retryable() bool { return e.Class == ClassTransient }

// Transient wraps err as a retryable failure.
func Transient(err error) *Error { return &Error{Class: ClassTransient, Err: err} }

// Terminal wraps err as a failure that retrying cannot fix.
func Terminal(err error) *Error { return &Error{Class: ClassTerminal, Err: err} }

// IsRetryable reports whether err should be retried: attempt timeouts
// are, and so is anything that classifies itself as retryable. Unknown
// errors are terminal.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// RetryHint extracts a server-suggested delay from err, zero if none.
func RetryHint(err error) time.Duration {
	var h interface{ RetryAfter() time.Duration }
	if errors.As(err, &h) {
		return h.RetryAfter()
	}
	return 0
}
