package health

import (
	"context"
	"time"

	"github.com/jonwraymond/mjolnir/breaker"
	"github.com/jonwraymond/mjolnir/command"
)

// BreakerChecker reports one dependency group's breaker state as a
// health result.
type BreakerChecker struct {
	key string
	brk *breaker.Breaker
}

// NewBreakerChecker creates a checker over the given breaker.
func NewBreakerChecker(key string, brk *breaker.Breaker) *BreakerChecker {
	return &BreakerChecker{key: key, brk: brk}
}

// Name returns "breaker:<key>".
func (c *BreakerChecker) Name() string {
	return "breaker:" + c.key
}

// Check maps the breaker state onto a health status: closed is healthy,
// half-open is degraded, open is unhealthy.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	state := c.brk.State()
	m := c.brk.Metrics()

	res := Result{
		Timestamp: time.Now(),
		Details: map[string]any{
			"state":        state.String(),
			"total":        m.Total(),
			"errors":       m.Errors(),
			"errorPercent": m.ErrorPercent(),
		},
	}

	switch state {
	case breaker.StateClosed:
		res.Status = StatusHealthy
		res.Message = "circuit closed"
	case breaker.StateHalfOpen:
		res.Status = StatusDegraded
		res.Message = "circuit probing for recovery"
	default:
		res.Status = StatusUnhealthy
		res.Message = "circuit open"
	}
	return res
}

// RuntimeCheckers builds one BreakerChecker per breaker the runtime has
// created so far. Groups that were never invoked have no breaker and no
// checker.
func RuntimeCheckers(rt *command.Runtime) []Checker {
	breakers := rt.Breakers()
	out := make([]Checker, 0, len(breakers))
	for key, brk := range breakers {
		out = append(out, NewBreakerChecker(key.String(), brk))
	}
	return out
}
