package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/mjolnir/breaker"
	"github.com/jonwraymond/mjolnir/clock"
	"github.com/jonwraymond/mjolnir/command"
	"github.com/jonwraymond/mjolnir/config"
	"github.com/jonwraymond/mjolnir/rolling"
)

func newTestBreaker(t *testing.T) (*breaker.Breaker, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m := breaker.NewMetrics(rolling.NewCounter(rolling.Config{Clock: fake}))
	return breaker.New(breaker.Config{Key: "svc", Metrics: m, Clock: fake}), fake
}

func TestBreakerChecker_Closed(t *testing.T) {
	brk, _ := newTestBreaker(t)
	c := NewBreakerChecker("svc", brk)

	if c.Name() != "breaker:svc" {
		t.Errorf("Name() = %q, want breaker:svc", c.Name())
	}

	res := c.Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", res.Status)
	}
	if res.Details["state"] != "closed" {
		t.Errorf("state detail = %v, want closed", res.Details["state"])
	}
}

func TestBreakerChecker_OpenAndProbing(t *testing.T) {
	brk, fake := newTestBreaker(t)
	c := NewBreakerChecker("svc", brk)

	for i := 0; i < breaker.DefaultMinimumOperations; i++ {
		brk.Metrics().MarkFailure()
	}
	if brk.IsAllowing() {
		t.Fatal("breaker did not trip")
	}

	if got := c.Check(context.Background()).Status; got != StatusUnhealthy {
		t.Errorf("Status while open = %v, want unhealthy", got)
	}

	fake.Advance(breaker.DefaultTrippedDurationMillis * time.Millisecond)
	if !brk.IsAllowing() {
		t.Fatal("probe not admitted")
	}

	if got := c.Check(context.Background()).Status; got != StatusDegraded {
		t.Errorf("Status while probing = %v, want degraded", got)
	}
}

func TestAggregator_WorstStatusWins(t *testing.T) {
	healthy := NewCheckerFunc("a", func(context.Context) Result {
		return Result{Status: StatusHealthy}
	})
	degraded := NewCheckerFunc("b", func(context.Context) Result {
		return Result{Status: StatusDegraded}
	})

	a := NewAggregator(healthy, degraded)

	report := a.Check(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("aggregate Status = %v, want degraded", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("Checks = %d, want 2", len(report.Checks))
	}
}

func TestAggregator_EmptyIsHealthy(t *testing.T) {
	a := NewAggregator()

	if got := a.Check(context.Background()).Status; got != StatusHealthy {
		t.Errorf("empty aggregate Status = %v, want healthy", got)
	}
}

func TestAggregator_RegisterAndNames(t *testing.T) {
	a := NewAggregator()
	a.Register(NewCheckerFunc("z", func(context.Context) Result { return Result{} }))
	a.Register(NewCheckerFunc("a", func(context.Context) Result { return Result{} }))

	names := a.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "z" {
		t.Errorf("Names() = %v, want [a z]", names)
	}
}

func TestRuntimeCheckers(t *testing.T) {
	rt := command.NewRuntime(command.RuntimeConfig{
		Provider:      config.NewStatic(nil),
		DisableGauges: true,
	})
	defer rt.Close()

	// No breakers yet.
	if got := len(RuntimeCheckers(rt)); got != 0 {
		t.Errorf("checkers before any invoke = %d, want 0", got)
	}

	cmd := command.New("PingCommand", command.NewKey("svc"),
		func(ctx context.Context) (bool, error) { return false, errors.New("down") })
	_, _ = command.Invoke(context.Background(), rt, cmd, command.Return)

	checkers := RuntimeCheckers(rt)
	if len(checkers) != 1 {
		t.Fatalf("checkers = %d, want 1", len(checkers))
	}
	if checkers[0].Name() != "breaker:svc" {
		t.Errorf("checker name = %q, want breaker:svc", checkers[0].Name())
	}
}

func TestHandler(t *testing.T) {
	unhealthy := NewCheckerFunc("svc", func(context.Context) Result {
		return Result{Status: StatusUnhealthy, Message: "circuit open"}
	})
	a := NewAggregator(unhealthy)

	rec := httptest.NewRecorder()
	Handler(a).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 503 {
		t.Errorf("status code = %d, want 503", rec.Code)
	}

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Status != "unhealthy" {
		t.Errorf("body status = %q, want unhealthy", body.Status)
	}
	if body.Checks["svc"].Message != "circuit open" {
		t.Errorf("check message = %q, want circuit open", body.Checks["svc"].Message)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
