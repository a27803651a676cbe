package command

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/mjolnir/breaker"
	"github.com/jonwraymond/mjolnir/bulkhead"
	"github.com/jonwraymond/mjolnir/clock"
	"github.com/jonwraymond/mjolnir/config"
	"github.com/jonwraymond/mjolnir/observe"
	"github.com/jonwraymond/mjolnir/rolling"
)

// DefaultGaugeIntervalMillis is the gauge publishing period used when
// none is configured.
const DefaultGaugeIntervalMillis = 5000

// RuntimeConfig configures a Runtime.
type RuntimeConfig struct {
	// Provider supplies runtime settings. A nil provider leaves every
	// setting at its default.
	Provider config.Provider

	// Clock supplies time for breakers and rolling windows.
	// Default: the system clock
	Clock clock.Clock

	// Logger receives state transition and lifecycle entries.
	// Default: discard
	Logger observe.Logger

	// Sink receives command and breaker events.
	// Default: discard
	Sink observe.Sink

	// Tracer wraps each command execution in a span.
	// Default: no-op tracer
	Tracer trace.Tracer

	// DisableGauges turns off the periodic gauge publisher.
	DisableGauges bool
}

// Runtime holds the process-lifetime protection state: one breaker,
// bulkhead, and fallback gate per group key, created lazily on first
// reference and never removed. Construct one at program start and thread
// it through the invoker.
type Runtime struct {
	cfg    config.Provider
	clk    clock.Clock
	log    observe.Logger
	sink   observe.Sink
	tracer trace.Tracer

	mu       sync.RWMutex
	breakers map[Key]*breaker.Breaker
	sems     map[Key]*semEntry
	pools    map[Key]*poolEntry
	gates    map[Key]*gateEntry

	closeOnce sync.Once
	stop      chan struct{}
	gaugeWG   sync.WaitGroup
}

type semEntry struct {
	sem      *bulkhead.Semaphore
	capacity int
}

type poolEntry struct {
	pool    *bulkhead.Pool
	workers int
	queue   int
}

type gateEntry struct {
	gate     *bulkhead.Gate
	capacity int
}

// NewRuntime creates a runtime and starts its gauge publisher.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger{}
	}
	if cfg.Sink == nil {
		cfg.Sink = observe.NoopSink{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracenoop.NewTracerProvider().Tracer("mjolnir")
	}

	rt := &Runtime{
		cfg:      cfg.Provider,
		clk:      cfg.Clock,
		log:      cfg.Logger,
		sink:     cfg.Sink,
		tracer:   cfg.Tracer,
		breakers: make(map[Key]*breaker.Breaker),
		sems:     make(map[Key]*semEntry),
		pools:    make(map[Key]*poolEntry),
		gates:    make(map[Key]*gateEntry),
		stop:     make(chan struct{}),
	}

	if !cfg.DisableGauges {
		rt.gaugeWG.Add(1)
		go rt.gaugeLoop()
	}
	return rt
}

// Close stops the gauge publisher and the worker pools. Idempotent.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		close(rt.stop)
		rt.gaugeWG.Wait()

		rt.mu.Lock()
		pools := make([]*bulkhead.Pool, 0, len(rt.pools))
		for _, e := range rt.pools {
			pools = append(pools, e.pool)
		}
		rt.mu.Unlock()

		for _, p := range pools {
			p.Close()
		}
		rt.log.Info(context.Background(), "runtime closed")
	})
}

// BreakerFor returns the breaker for key, creating it on first
// reference.
func (rt *Runtime) BreakerFor(key Key) *breaker.Breaker {
	rt.mu.RLock()
	b, ok := rt.breakers[key]
	rt.mu.RUnlock()
	if ok {
		return b
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if b, ok := rt.breakers[key]; ok {
		return b
	}

	metrics := breaker.NewMetrics(rolling.NewCounter(rolling.Config{Clock: rt.clk}))
	k := key.String()
	b = breaker.New(breaker.Config{
		Key:      k,
		Metrics:  metrics,
		Provider: rt.cfg,
		Clock:    rt.clk,
		OnStateChange: func(from, to breaker.State) {
			rt.log.Info(context.Background(), "breaker state changed",
				observe.Field{Key: "breaker", Value: k},
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()})
		},
	})
	rt.breakers[key] = b
	return b
}

// SemaphoreFor returns the semaphore bulkhead for key at its currently
// configured capacity. A capacity change swaps in a fresh bulkhead;
// in-flight holders release against the old instance and drain it
// naturally.
func (rt *Runtime) SemaphoreFor(key Key) *bulkhead.Semaphore {
	capacity := config.IntOr(rt.cfg,
		config.PoolKey(key.String(), config.FieldThreadCount),
		bulkhead.DefaultMaxConcurrent)

	rt.mu.RLock()
	e, ok := rt.sems[key]
	rt.mu.RUnlock()
	if ok && e.capacity == capacity {
		return e.sem
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if e, ok := rt.sems[key]; ok && e.capacity == capacity {
		return e.sem
	}

	sem := bulkhead.NewSemaphore(capacity)
	rt.sems[key] = &semEntry{sem: sem, capacity: capacity}
	rt.log.Debug(context.Background(), "bulkhead created",
		observe.Field{Key: "bulkhead", Value: key.String()},
		observe.Field{Key: "maxConcurrent", Value: capacity})
	return sem
}

// queuedFor reports whether key is configured for the queued bulkhead
// variant.
func (rt *Runtime) queuedFor(key Key) bool {
	if rt.cfg == nil {
		return false
	}
	_, ok := rt.cfg.GetInt(config.PoolKey(key.String(), config.FieldQueueLength))
	return ok
}

// PoolFor returns the worker-pool bulkhead for key at its currently
// configured size, swapping in a fresh pool when the size changed. The
// old pool drains and closes in the background.
func (rt *Runtime) PoolFor(key Key) *bulkhead.Pool {
	workers := config.IntOr(rt.cfg,
		config.PoolKey(key.String(), config.FieldThreadCount),
		bulkhead.DefaultMaxConcurrent)
	queue := config.IntOr(rt.cfg,
		config.PoolKey(key.String(), config.FieldQueueLength),
		bulkhead.DefaultQueueLength)

	rt.mu.RLock()
	e, ok := rt.pools[key]
	rt.mu.RUnlock()
	if ok && e.workers == workers && e.queue == queue {
		return e.pool
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if e, ok := rt.pools[key]; ok && e.workers == workers && e.queue == queue {
		return e.pool
	}

	if old, ok := rt.pools[key]; ok {
		go old.pool.Close()
	}
	pool := bulkhead.NewPool(workers, queue)
	rt.pools[key] = &poolEntry{pool: pool, workers: workers, queue: queue}
	rt.log.Debug(context.Background(), "worker pool created",
		observe.Field{Key: "pool", Value: key.String()},
		observe.Field{Key: "threadCount", Value: workers},
		observe.Field{Key: "queueLength", Value: queue})
	return pool
}

// GateFor returns the fallback gate for key at its currently configured
// capacity.
func (rt *Runtime) GateFor(key Key) *bulkhead.Gate {
	capacity := config.IntOr(rt.cfg,
		config.FallbackKey(key.String(), config.FieldMaxConcurrent),
		bulkhead.DefaultMaxConcurrent)

	rt.mu.RLock()
	e, ok := rt.gates[key]
	rt.mu.RUnlock()
	if ok && e.capacity == capacity {
		return e.gate
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if e, ok := rt.gates[key]; ok && e.capacity == capacity {
		return e.gate
	}

	gate := bulkhead.NewGate(capacity)
	rt.gates[key] = &gateEntry{gate: gate, capacity: capacity}
	return gate
}

// Breakers returns a snapshot of the breakers created so far, keyed by
// group key. Used by the health and gauge surfaces.
func (rt *Runtime) Breakers() map[Key]*breaker.Breaker {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make(map[Key]*breaker.Breaker, len(rt.breakers))
	for k, b := range rt.breakers {
		out[k] = b
	}
	return out
}

// gaugeLoop periodically publishes breaker totals and bulkhead activity
// to the sink until the runtime closes.
func (rt *Runtime) gaugeLoop() {
	defer rt.gaugeWG.Done()

	for {
		interval := config.IntOr(rt.cfg, config.KeyGaugeIntervalMillis, DefaultGaugeIntervalMillis)
		if interval <= 0 {
			interval = DefaultGaugeIntervalMillis
		}

		select {
		case <-rt.stop:
			return
		case <-time.After(time.Duration(interval) * time.Millisecond):
			rt.publishGauges()
		}
	}
}

// publishGauges emits one gauge event per breaker and bulkhead.
func (rt *Runtime) publishGauges() {
	rt.mu.RLock()
	breakers := make(map[Key]*breaker.Breaker, len(rt.breakers))
	for k, b := range rt.breakers {
		breakers[k] = b
	}
	sems := make(map[Key]*bulkhead.Semaphore, len(rt.sems))
	for k, e := range rt.sems {
		sems[k] = e.sem
	}
	pools := make(map[Key]*bulkhead.Pool, len(rt.pools))
	for k, e := range rt.pools {
		pools[k] = e.pool
	}
	rt.mu.RUnlock()

	for k, b := range breakers {
		m := b.Metrics()
		rt.sink.Event("mjolnir breaker "+k.String()+" total", "total", float64(m.Total()))
		rt.sink.Event("mjolnir breaker "+k.String()+" error", "error", float64(m.Errors()))
	}
	for k, s := range sems {
		rt.sink.Event("mjolnir pool "+k.String()+" activeThreads", "gauge", float64(s.Stats().Active))
	}
	for k, p := range pools {
		rt.sink.Event("mjolnir pool "+k.String()+" activeThreads", "gauge", float64(p.Stats().Active))
	}
}
