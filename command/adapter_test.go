package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/mjolnir/config"
)

func TestWrap_GuardsEachCall(t *testing.T) {
	rt, _ := newTestRuntime(t, runtimeOpts{})

	calls := 0
	double := Wrap(rt, Binding{Group: NewKey("math")}, "Double",
		func(ctx context.Context, n int) (int, error) {
			calls++
			return n * 2, nil
		})

	// Each call synthesizes a fresh one-shot command, so repeated calls
	// work fine.
	for i := 1; i <= 3; i++ {
		got, err := double(context.Background(), i)
		if err != nil {
			t.Fatalf("double(%d) error = %v", i, err)
		}
		if got != i*2 {
			t.Errorf("double(%d) = %d, want %d", i, got, i*2)
		}
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWrap_FailuresCarryDiagnostics(t *testing.T) {
	rt, _ := newTestRuntime(t, runtimeOpts{})
	bodyErr := errors.New("remote failed")

	fetch := Wrap(rt, Binding{Group: NewKey("users"), DefaultTimeout: 2 * time.Second}, "FetchCommand",
		func(ctx context.Context, id string) (string, error) {
			return "", bodyErr
		})

	_, err := fetch(context.Background(), "42")
	ce := asCommandError(t, err)
	if ce.Command != "users.Fetch" {
		t.Errorf("Command = %q, want users.Fetch", ce.Command)
	}
	if ce.TimeoutMillis != "2000" {
		t.Errorf("TimeoutMillis = %q, want 2000", ce.TimeoutMillis)
	}
	if !errors.Is(err, bodyErr) {
		t.Errorf("error = %v, want wrapped %v", err, bodyErr)
	}
}

func TestWrap_BreakerShared(t *testing.T) {
	p := config.NewStatic(map[string]any{
		config.BreakerKey("flaky", config.FieldForceTripped): true,
	})
	rt, _ := newTestRuntime(t, runtimeOpts{provider: p})

	called := false
	call := Wrap(rt, Binding{Group: NewKey("flaky")}, "Call",
		func(ctx context.Context, _ struct{}) (bool, error) {
			called = true
			return true, nil
		})

	_, err := call(context.Background(), struct{}{})
	if called {
		t.Error("callee ran through a force-tripped breaker")
	}
	if !errors.Is(err, ErrBreakerRejected) {
		t.Errorf("error = %v, want ErrBreakerRejected", err)
	}
}

func TestWrap_ForwardsCallerContext(t *testing.T) {
	rt, _ := newTestRuntime(t, runtimeOpts{})

	type ctxKey struct{}
	base := context.WithValue(context.Background(), ctxKey{}, "payload")

	read := Wrap(rt, Binding{Group: NewKey("ctx")}, "Read",
		func(ctx context.Context, _ struct{}) (string, error) {
			v, _ := ctx.Value(ctxKey{}).(string)
			return v, nil
		})

	got, err := read(base, struct{}{})
	if err != nil {
		t.Fatalf("read() error = %v", err)
	}
	if got != "payload" {
		t.Errorf("context value = %q, want payload", got)
	}
}

func TestWrap_IgnoreTimeoutsForwardsExactCallerToken(t *testing.T) {
	p := config.NewStatic(map[string]any{config.KeyIgnoreTimeouts: true})
	rt, _ := newTestRuntime(t, runtimeOpts{provider: p})

	callerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe := Wrap(rt, Binding{Group: NewKey("ctx")}, "Probe",
		func(ctx context.Context, _ struct{}) (bool, error) {
			// With the bypass on, the callee sees the caller's own
			// context rather than the invoker's detached composition.
			return ctx == callerCtx, nil
		})

	same, err := probe(callerCtx, struct{}{})
	if err != nil {
		t.Fatalf("probe() error = %v", err)
	}
	if !same {
		t.Error("callee did not receive the exact caller context")
	}
}

func TestWrap0(t *testing.T) {
	rt, _ := newTestRuntime(t, runtimeOpts{})

	ping := Wrap0(rt, Binding{Group: NewKey("net")}, "Ping",
		func(ctx context.Context) (string, error) {
			return "pong", nil
		})

	got, err := ping(context.Background())
	if err != nil {
		t.Fatalf("ping() error = %v", err)
	}
	if got != "pong" {
		t.Errorf("ping() = %q, want pong", got)
	}
}
