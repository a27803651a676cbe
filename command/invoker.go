package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/mjolnir/config"
	"github.com/jonwraymond/mjolnir/observe"
)

// OnFailure selects how a non-success outcome surfaces.
type OnFailure int

const (
	// Throw returns non-success outcomes as a non-nil error.
	Throw OnFailure = iota
	// Return delivers non-success outcomes inside the Result; the error
	// return is reserved for programming mistakes, which surface on
	// both modes.
	Return
)

// String returns the string representation of the mode.
func (f OnFailure) String() string {
	switch f {
	case Throw:
		return "Throw"
	case Return:
		return "Return"
	default:
		return "Unknown"
	}
}

// InvokeOption configures a single invocation.
type InvokeOption struct {
	apply func(*invokeOptions)
}

type invokeOptions struct {
	timeoutMillis int64
	timeoutSet    bool
}

// WithTimeoutMillis overrides the command's timeout for this invocation.
// Zero means already expired: the call short-circuits as TimedOut
// without running the body.
func WithTimeoutMillis(ms int64) InvokeOption {
	return InvokeOption{apply: func(o *invokeOptions) {
		o.timeoutMillis = ms
		o.timeoutSet = true
	}}
}

// timeoutDisabled marks a command whose timeout was switched off through
// config; only caller cancellation governs the body.
const timeoutDisabled = int64(-1)

// Invoke runs the command synchronously, blocking the calling goroutine
// on the body.
//
// On success the Result carries the body's value. A non-success outcome
// surfaces per onFailure: Throw returns the diagnostic error, Return
// packs it into Result.Err. Reusing a command instance or constructing
// one with an invalid timeout is a programming error returned as a
// non-nil error on both modes.
func Invoke[T any](ctx context.Context, rt *Runtime, cmd *Command[T], onFailure OnFailure, opts ...InvokeOption) (Result[T], error) {
	var o invokeOptions
	for _, opt := range opts {
		opt.apply(&o)
	}

	if err := guard(cmd.desc); err != nil {
		return Result[T]{Status: Faulted, Err: err}, err
	}

	res := execute(ctx, rt, cmd, o)
	return surface(res, onFailure)
}

// InvokeAsync runs the command on its own goroutine and returns a
// completion handle. The single-use guard is applied before return, so
// a reused instance fails immediately.
func InvokeAsync[T any](ctx context.Context, rt *Runtime, cmd *Command[T], onFailure OnFailure, opts ...InvokeOption) *Future[T] {
	var o invokeOptions
	for _, opt := range opts {
		opt.apply(&o)
	}

	f := newFuture[T]()
	if err := guard(cmd.desc); err != nil {
		f.complete(Result[T]{Status: Faulted, Err: err}, err)
		return f
	}

	go func() {
		res, err := surface(execute(ctx, rt, cmd, o), onFailure)
		f.complete(res, err)
	}()
	return f
}

// guard enforces the one-shot use of a command instance and surfaces
// construction errors. Both are programming errors that ignore the
// OnFailure mode.
func guard(desc *Descriptor) error {
	if !desc.markInvoked() {
		return &Error{
			Command:  desc.name,
			Status:   Faulted,
			Breaker:  desc.breakerKey,
			Bulkhead: desc.bulkheadKey,
			Cause:    ErrReused,
		}
	}
	if desc.invalid != nil {
		return &Error{
			Command:  desc.name,
			Status:   Faulted,
			Breaker:  desc.breakerKey,
			Bulkhead: desc.bulkheadKey,
			Cause:    desc.invalid,
		}
	}
	return nil
}

// surface applies the OnFailure mode to a finished result.
func surface[T any](res Result[T], onFailure OnFailure) (Result[T], error) {
	if onFailure == Throw && res.Status != RanToCompletion {
		return res, res.Err
	}
	return res, nil
}

// execute runs steps 2-9 of an invocation: timeout resolution,
// cancellation composition, admission, the body, classification,
// metrics publication, and fallback.
func execute[T any](ctx context.Context, rt *Runtime, cmd *Command[T], o invokeOptions) Result[T] {
	desc := cmd.desc
	ignore := config.BoolOr(rt.cfg, config.KeyIgnoreTimeouts, false)

	// Effective timeout and its diagnostic label.
	timeoutMillis := timeoutDisabled
	timeoutLabel := "Token"
	if ignore {
		timeoutLabel = "Ignored"
	} else {
		if o.timeoutSet {
			timeoutMillis = o.timeoutMillis
		} else if v, ok := configuredTimeout(rt.cfg, desc.name); ok {
			timeoutMillis = v
		} else {
			timeoutMillis = desc.defaultTimeout.Milliseconds()
		}
		if timeoutMillis != timeoutDisabled {
			timeoutLabel = strconv.FormatInt(timeoutMillis, 10)
		}
	}

	start := rt.clk.Now()
	elapsedMillis := func() int64 {
		return rt.clk.Now().Sub(start).Milliseconds()
	}

	ctx, span := rt.tracer.Start(ctx, "mjolnir.execute",
		trace.WithAttributes(
			attribute.String("mjolnir.command", desc.name),
			attribute.String("mjolnir.breaker", desc.breakerKey.String()),
			attribute.String("mjolnir.bulkhead", desc.bulkheadKey.String()),
		))
	defer span.End()

	// finish classifies a non-success outcome: it attaches the
	// diagnostic bag, publishes the command event, and hands control to
	// the fallback when one is attached.
	finish := func(status Status, cause error) Result[T] {
		elapsed := elapsedMillis()
		diag := &Error{
			Command:       desc.name,
			Status:        status,
			Breaker:       desc.breakerKey,
			Bulkhead:      desc.bulkheadKey,
			TimeoutMillis: timeoutLabel,
			ElapsedMillis: elapsed,
			Cause:         cause,
		}
		span.SetAttributes(attribute.String("mjolnir.status", status.String()))
		rt.sink.Event("mjolnir command "+desc.name+" execute", status.String(), float64(elapsed))
		rt.log.WithCommand(desc.name).Debug(ctx, "command finished",
			observe.Field{Key: "status", Value: status.String()},
			observe.Field{Key: "elapsedMillis", Value: elapsed})
		return runFallback(ctx, rt, cmd, status, diag)
	}

	// Cancellation composition. A pre-expired timeout or pre-canceled
	// caller classifies immediately; the body and the admission
	// controllers are never consulted.
	bodyCtx := ctx
	if ignore {
		bodyCtx = context.WithoutCancel(ctx)
	} else {
		if o.timeoutSet && o.timeoutMillis <= 0 {
			return finish(TimedOut, ErrTimedOut)
		}
		if ctx.Err() != nil {
			// The caller's token, not our timeout, ended this call.
			if !o.timeoutSet {
				timeoutLabel = "Token"
			}
			return finish(Canceled, ErrCanceled)
		}

		var cancel context.CancelFunc
		if timeoutMillis != timeoutDisabled {
			bodyCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutMillis)*time.Millisecond)
		} else {
			bodyCtx, cancel = context.WithCancel(ctx)
		}
		defer cancel()
	}

	// Admission: breaker, then bulkhead. Rejections are marked on the
	// window under their own kinds, never as failures.
	brk := rt.BreakerFor(desc.breakerKey)
	metrics := brk.Metrics()
	if config.BoolOr(rt.cfg, config.KeyUseCircuitBreakers, true) {
		allowed := brk.IsAllowing()
		state := "Allowed"
		if !allowed {
			state = "Rejected"
		}
		rt.sink.Event("mjolnir breaker "+desc.breakerKey.String()+" IsAllowing", state, 1)
		if !allowed {
			metrics.MarkShortCircuited()
			return finish(Rejected, ErrBreakerRejected)
		}
	}

	var value T
	var runErr error
	if rt.queuedFor(desc.bulkheadKey) {
		pool := rt.PoolFor(desc.bulkheadKey)
		type outcome struct {
			value T
			err   error
		}
		done := make(chan outcome, 1)
		if err := pool.Submit(func() {
			v, err := cmd.run(bodyCtx)
			done <- outcome{value: v, err: err}
		}); err != nil {
			metrics.MarkThreadPoolRejected()
			return finish(Rejected, ErrPoolRejected)
		}
		select {
		case out := <-done:
			value, runErr = out.value, out.err
		case <-bodyCtx.Done():
			runErr = bodyCtx.Err()
		}
	} else {
		sem := rt.SemaphoreFor(desc.bulkheadKey)
		if err := sem.TryAcquire(); err != nil {
			metrics.MarkBulkheadRejected()
			return finish(Rejected, ErrBulkheadRejected)
		}
		func() {
			defer sem.Release()
			value, runErr = cmd.run(bodyCtx)
		}()
	}

	// Classification.
	switch {
	case runErr == nil:
		elapsed := elapsedMillis()
		brk.MarkSuccess(rt.clk.Now().Sub(start))
		metrics.MarkSuccess()
		span.SetAttributes(attribute.String("mjolnir.status", RanToCompletion.String()))
		rt.sink.Event("mjolnir command "+desc.name+" execute", RanToCompletion.String(), float64(elapsed))
		return Result[T]{Status: RanToCompletion, Value: value}

	case errors.Is(runErr, ErrBreakerRejected),
		errors.Is(runErr, ErrBulkheadRejected),
		errors.Is(runErr, ErrPoolRejected):
		// A nested command's rejection bubbles up as this command's
		// rejection; the nested invoker already marked its own window.
		return finish(Rejected, runErr)

	case IsBadRequest(runErr):
		metrics.MarkBadRequest()
		return finish(Faulted, runErr)

	case !ignore && (isCancellation(runErr) || bodyCtx.Err() != nil):
		if ctx.Err() != nil {
			// Caller cancellation is load the caller shed, not a
			// dependency fault; it stays out of the health window.
			return finish(Canceled, ErrCanceled)
		}
		metrics.MarkTimeout()
		return finish(TimedOut, ErrTimedOut)

	default:
		metrics.MarkFailure()
		return finish(Faulted, runErr)
	}
}

// runFallback runs the command's fallback, if any, inside the group's
// fallback gate. A successful fallback converts the outcome to
// RanToCompletion with the fallback's value.
func runFallback[T any](ctx context.Context, rt *Runtime, cmd *Command[T], status Status, diag *Error) Result[T] {
	if cmd.fallback == nil {
		return Result[T]{Status: status, Err: diag}
	}

	gate := rt.GateFor(cmd.desc.group)
	if err := gate.TryAcquire(); err != nil {
		return Result[T]{Status: status, Err: fmt.Errorf("%w: %w", ErrFallbackRejected, diag)}
	}
	defer gate.Release()

	value, err := cmd.fallback(ctx, diag)
	switch {
	case err == nil:
		return Result[T]{Status: RanToCompletion, Value: value}
	case errors.Is(err, ErrFallbackNotImplemented):
		return Result[T]{Status: status, Err: fmt.Errorf("%w: %w", ErrFallbackNotImplemented, diag)}
	default:
		return Result[T]{Status: status, Err: fmt.Errorf("%w: %v (original: %w)", ErrFallbackFailed, err, diag)}
	}
}

// configuredTimeout reads command.<name>.Timeout. A configured value of
// zero or less disables the timeout entirely.
func configuredTimeout(p config.Provider, name string) (int64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.GetInt64(config.CommandTimeoutKey(name))
	if !ok {
		return 0, false
	}
	if v <= 0 {
		return timeoutDisabled, true
	}
	return v, true
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
