package command

import (
	"errors"
	"fmt"
)

// Sentinel errors for invocation outcomes.
var (
	// ErrReused is returned when a command instance is invoked twice.
	// This is a programming error and is surfaced on every OnFailure
	// mode.
	ErrReused = errors.New("command: instance already invoked")

	// ErrInvalidTimeout is returned when a command was built with a
	// non-positive default timeout. Also a programming error.
	ErrInvalidTimeout = errors.New("command: non-positive default timeout")

	// ErrBreakerRejected is returned when the circuit breaker refuses
	// admission.
	ErrBreakerRejected = errors.New("command: circuit breaker rejected")

	// ErrBulkheadRejected is returned when the bulkhead has no free
	// permits.
	ErrBulkheadRejected = errors.New("command: bulkhead rejected")

	// ErrPoolRejected is returned when the worker queue cannot take the
	// command.
	ErrPoolRejected = errors.New("command: worker queue rejected")

	// ErrTimedOut is returned when the composed timeout fires.
	ErrTimedOut = errors.New("command: timed out")

	// ErrCanceled is returned when the caller's context is canceled.
	ErrCanceled = errors.New("command: canceled")

	// ErrFallbackRejected is returned when the fallback gate is full;
	// the original failure is preserved as the cause.
	ErrFallbackRejected = errors.New("command: fallback rejected")

	// ErrFallbackNotImplemented marks a fallback that declined to
	// handle the failure.
	ErrFallbackNotImplemented = errors.New("command: fallback not implemented")

	// ErrFallbackFailed marks a fallback that itself returned an error.
	ErrFallbackFailed = errors.New("command: fallback failed")
)

// BadRequest wraps err as a caller mistake. Bad requests are classified
// Faulted but are excluded from breaker health accounting.
func BadRequest(err error) error {
	return badRequestError{err: err}
}

type badRequestError struct {
	err error
}

func (e badRequestError) Error() string {
	return "command: bad request: " + e.err.Error()
}

func (e badRequestError) Unwrap() error {
	return e.err
}

// IsBadRequest reports whether err is or wraps a BadRequest error.
func IsBadRequest(err error) bool {
	var bre badRequestError
	return errors.As(err, &bre)
}

// Error is the diagnostic bag attached to every non-success outcome.
type Error struct {
	// Command is the command name.
	Command string
	// Status is the classified outcome.
	Status Status
	// Breaker and Bulkhead are the admission keys used.
	Breaker  Key
	Bulkhead Key
	// TimeoutMillis is the timeout used: a millisecond count, "Token"
	// when only caller cancellation governed the call, or "Ignored"
	// when the global bypass was on.
	TimeoutMillis string
	// ElapsedMillis is the time from cancellation composition to
	// classification.
	ElapsedMillis int64
	// Cause is the underlying error.
	Cause error
}

// Error returns the diagnostic string.
func (e *Error) Error() string {
	return fmt.Sprintf("command %s %s (breaker=%s bulkhead=%s timeout=%s elapsed=%dms): %v",
		e.Command, e.Status, e.Breaker, e.Bulkhead, e.TimeoutMillis, e.ElapsedMillis, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}
