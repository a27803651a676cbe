// Package command provides the invocation core: one-shot commands, the
// runtime that holds per-group breakers, bulkheads and fallback gates,
// and the invoker that composes timeout, cancellation, admission,
// classification, metrics publication and fallback around a single call.
//
// A Command wraps one risky call. It is created, invoked exactly once,
// and discarded; reusing an instance is a programming error surfaced on
// every invocation mode. The Runtime owns the process-lifetime pieces:
// breakers, bulkheads and gates are created lazily per group key and
// never removed.
//
// # Invoking
//
//	rt := command.NewRuntime(command.RuntimeConfig{Provider: cfg})
//	defer rt.Close()
//
//	cmd := command.New("FetchUser", command.NewKey("users"),
//	    func(ctx context.Context) (User, error) {
//	        return client.Fetch(ctx, id)
//	    },
//	).WithFallback(func(ctx context.Context, cause error) (User, error) {
//	    return cachedUser(id)
//	})
//
//	res, err := command.Invoke(ctx, rt, cmd, command.Throw)
//
// With OnFailure Throw a non-success outcome is returned as an error
// carrying the full diagnostic bag; with Return the outcome comes back
// in the Result and the error return is reserved for programming
// mistakes such as reusing a command instance.
package command
