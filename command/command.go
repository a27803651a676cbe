package command

import (
	"context"
	"time"
)

// Command wraps one risky call as a single-use unit of work. The zero
// value is not usable; construct with New.
type Command[T any] struct {
	desc     *Descriptor
	run      func(ctx context.Context) (T, error)
	fallback func(ctx context.Context, cause error) (T, error)
}

// Option configures a Command at construction.
type Option struct {
	apply func(*options)
}

type options struct {
	breakerKey  Key
	bulkheadKey Key
	timeout     time.Duration
	timeoutSet  bool
}

// WithBreakerKey routes the command through the breaker for key instead
// of the group's breaker.
func WithBreakerKey(key Key) Option {
	return Option{apply: func(o *options) { o.breakerKey = key }}
}

// WithBulkheadKey routes the command through the bulkhead for key
// instead of the group's bulkhead.
func WithBulkheadKey(key Key) Option {
	return Option{apply: func(o *options) { o.bulkheadKey = key }}
}

// WithTimeout sets the command's default timeout. A non-positive value
// is a programming error surfaced on invocation.
func WithTimeout(d time.Duration) Option {
	return Option{apply: func(o *options) { o.timeout = d; o.timeoutSet = true }}
}

// New creates a command. name is the short name (a Command suffix is
// dropped); the full name is derived from it and the group.
func New[T any](name string, group Key, run func(ctx context.Context) (T, error), opts ...Option) *Command[T] {
	var o options
	for _, opt := range opts {
		opt.apply(&o)
	}
	timeout := DefaultTimeout
	if o.timeoutSet {
		timeout = o.timeout
	}
	return &Command[T]{
		desc: newDescriptor(group, name, o.breakerKey, o.bulkheadKey, timeout),
		run:  run,
	}
}

// WithFallback attaches a fallback invoked once when the primary path
// fails or is rejected. The cause passed in is the diagnostic error of
// the primary failure. Returning ErrFallbackNotImplemented declines the
// failure and surfaces the original. Returns the command for chaining.
func (c *Command[T]) WithFallback(fn func(ctx context.Context, cause error) (T, error)) *Command[T] {
	c.fallback = fn
	return c
}

// Descriptor returns the command's immutable metadata.
func (c *Command[T]) Descriptor() *Descriptor {
	return c.desc
}
