package bulkhead

import "errors"

// Sentinel errors for admission control.
var (
	// ErrFull is returned when the semaphore has no free permits.
	ErrFull = errors.New("bulkhead: at capacity")

	// ErrQueueFull is returned when the worker queue cannot take another
	// task.
	ErrQueueFull = errors.New("bulkhead: worker queue full")

	// ErrClosed is returned when submitting to a closed pool.
	ErrClosed = errors.New("bulkhead: pool closed")

	// ErrFallbackFull is returned when the fallback gate has no free
	// permits.
	ErrFallbackFull = errors.New("bulkhead: fallback gate at capacity")
)
