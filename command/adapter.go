package command

import (
	"context"
	"time"

	"github.com/jonwraymond/mjolnir/config"
)

// Binding is the (group, bulkhead, timeout) triple attached to a wrapped
// interface. It plays the role of the command annotation: every call
// through a wrapped function synthesizes a one-shot command carrying
// these settings.
type Binding struct {
	// Group names the dependency cluster.
	Group Key

	// BulkheadKey overrides the bulkhead; empty means the group key.
	BulkheadKey Key

	// BreakerKey overrides the breaker; empty means the group key.
	BreakerKey Key

	// DefaultTimeout is the per-call timeout.
	// Default: the package default timeout
	DefaultTimeout time.Duration
}

func (b Binding) timeout() time.Duration {
	if b.DefaultTimeout > 0 {
		return b.DefaultTimeout
	}
	return DefaultTimeout
}

// Wrap guards a unary function. Each call creates a fresh one-shot
// command named after name and runs it through rt.
//
// The callee receives the composed cancellation context. When the
// global ignore-timeouts flag is set, the callee receives exactly the
// caller's context instead, untouched by the invoker's composition.
func Wrap[Req, Resp any](rt *Runtime, b Binding, name string, fn func(ctx context.Context, req Req) (Resp, error)) func(ctx context.Context, req Req) (Resp, error) {
	return func(ctx context.Context, req Req) (Resp, error) {
		callerCtx := ctx
		forwardCaller := config.BoolOr(rt.cfg, config.KeyIgnoreTimeouts, false)

		cmd := New(name, b.Group,
			func(bodyCtx context.Context) (Resp, error) {
				if forwardCaller {
					return fn(callerCtx, req)
				}
				return fn(bodyCtx, req)
			},
			WithBreakerKey(b.BreakerKey),
			WithBulkheadKey(b.BulkheadKey),
			WithTimeout(b.timeout()),
		)

		res, err := Invoke(ctx, rt, cmd, Throw)
		if err != nil {
			var zero Resp
			return zero, err
		}
		return res.Value, nil
	}
}

// Wrap0 guards a function with no request argument.
func Wrap0[Resp any](rt *Runtime, b Binding, name string, fn func(ctx context.Context) (Resp, error)) func(ctx context.Context) (Resp, error) {
	wrapped := Wrap(rt, b, name, func(ctx context.Context, _ struct{}) (Resp, error) {
		return fn(ctx)
	})
	return func(ctx context.Context) (Resp, error) {
		return wrapped(ctx, struct{}{})
	}
}
