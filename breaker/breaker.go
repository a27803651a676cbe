package breaker

import (
	"sync/atomic"
	"time"

	"github.com/jonwraymond/mjolnir/clock"
	"github.com/jonwraymond/mjolnir/config"
)

// Default breaker settings, overridable per key through the config
// provider.
const (
	DefaultMinimumOperations     = 10
	DefaultThresholdPercent      = 50
	DefaultTrippedDurationMillis = 10000
)

// Config configures a Breaker.
type Config struct {
	// Key names the dependency group this breaker guards.
	Key string

	// Metrics is the health view driving trip decisions. Required.
	Metrics *Metrics

	// Provider supplies the per-key settings, re-read on every decision.
	// A nil provider leaves every setting at its default.
	Provider config.Provider

	// Clock supplies time for the cooldown.
	// Default: the system clock
	Clock clock.Clock

	// OnStateChange is called when the breaker changes state.
	OnStateChange func(from, to State)
}

// Breaker is a three-state gate over one dependency group.
//
// The open/closed bit and the probe slot are both managed by CAS, so
// concurrent callers racing to trip the breaker converge on a single
// transition and exactly one caller wins the probe after the cooldown.
type Breaker struct {
	key     string
	metrics *Metrics
	cfg     config.Provider
	clk     clock.Clock
	onState func(from, to State)

	// tripped is the open/closed bit.
	tripped atomic.Bool

	// lastTrial is the unix-nano stamp of the last trip or probe
	// admission. The next probe waits a full cooldown from it.
	lastTrial atomic.Int64

	// probing is set while an admitted probe is unresolved. It exists
	// only so State can distinguish open from half-open.
	probing atomic.Bool
}

// New creates a breaker for the given key.
func New(cfg Config) *Breaker {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	return &Breaker{
		key:     cfg.Key,
		metrics: cfg.Metrics,
		cfg:     cfg.Provider,
		clk:     cfg.Clock,
		onState: cfg.OnStateChange,
	}
}

// Key returns the dependency group key.
func (b *Breaker) Key() string {
	return b.key
}

// Metrics returns the health view for this breaker.
func (b *Breaker) Metrics() *Metrics {
	return b.metrics
}

// IsAllowing reports whether a caller may proceed. It never mutates the
// metrics; it mutates breaker state only on a transition.
//
// Precedence: forceFixed > forceTripped > dynamic state.
func (b *Breaker) IsAllowing() bool {
	if config.BoolOr(b.cfg, config.BreakerKey(b.key, config.FieldForceFixed), false) {
		return true
	}
	if config.BoolOr(b.cfg, config.BreakerKey(b.key, config.FieldForceTripped), false) {
		return false
	}
	return b.allowProbe() || b.isHealthy()
}

// MarkSuccess records a successful body execution. A success while the
// breaker is tripped resolves the probe: the breaker closes and the
// metrics window restarts clean.
func (b *Breaker) MarkSuccess(elapsed time.Duration) {
	_ = elapsed
	if b.tripped.Load() && b.tripped.CompareAndSwap(true, false) {
		b.probing.Store(false)
		b.metrics.Reset()
		b.notify(StateHalfOpen, StateClosed)
	}
}

// State returns the current state. Half-open is reported from probe
// admission until a successful probe closes the breaker. A failed probe
// does not clear it: the breaker keeps rejecting calls for the next
// cooldown but State still reports half-open.
func (b *Breaker) State() State {
	if !b.tripped.Load() {
		return StateClosed
	}
	if b.probing.Load() {
		return StateHalfOpen
	}
	return StateOpen
}

// allowProbe admits a single caller once the cooldown since the last trip
// or probe has elapsed. The CAS on lastTrial makes the probe single
// flight: losers see the refreshed stamp and are rejected for another
// full cooldown.
func (b *Breaker) allowProbe() bool {
	if !b.tripped.Load() {
		return false
	}

	cooldown := config.Int64Or(b.cfg,
		config.BreakerKey(b.key, config.FieldTrippedDurationMillis),
		DefaultTrippedDurationMillis)

	now := b.clk.Now().UnixNano()
	last := b.lastTrial.Load()
	if now-last < cooldown*int64(time.Millisecond) {
		return false
	}
	if !b.lastTrial.CompareAndSwap(last, now) {
		return false
	}

	b.probing.Store(true)
	b.notify(StateOpen, StateHalfOpen)
	return true
}

// isHealthy reports whether the breaker is closed and the window is below
// the trip threshold, tripping it when not.
func (b *Breaker) isHealthy() bool {
	if b.tripped.Load() {
		return false
	}

	minOps := config.IntOr(b.cfg,
		config.BreakerKey(b.key, config.FieldMinimumOperations),
		DefaultMinimumOperations)
	threshold := config.IntOr(b.cfg,
		config.BreakerKey(b.key, config.FieldThresholdPercent),
		DefaultThresholdPercent)

	if b.metrics.Total() < int64(minOps) || b.metrics.ErrorPercent() < threshold {
		return true
	}

	// Stamp before flipping the bit so a racing allowProbe never sees a
	// tripped breaker with a stale trial time.
	b.lastTrial.Store(b.clk.Now().UnixNano())
	if b.tripped.CompareAndSwap(false, true) {
		b.probing.Store(false)
		b.notify(StateClosed, StateOpen)
	}
	return false
}

func (b *Breaker) notify(from, to State) {
	if b.onState != nil {
		b.onState(from, to)
	}
}
