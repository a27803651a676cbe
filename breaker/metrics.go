package breaker

import "github.com/jonwraymond/mjolnir/rolling"

// errorKinds are the event kinds that count against the error percentage.
// Short-circuits are excluded so an open breaker cannot hold itself open,
// and bad requests are excluded as caller mistakes rather than dependency
// faults.
var errorKinds = []rolling.Kind{
	rolling.Failure,
	rolling.Timeout,
	rolling.ThreadPoolRejected,
	rolling.BulkheadRejected,
}

// Metrics is the health view of one dependency group over the rolling
// window: total operations and the percentage of them that were errors.
type Metrics struct {
	counter *rolling.Counter
}

// NewMetrics creates a Metrics facade over the given rolling counter.
func NewMetrics(counter *rolling.Counter) *Metrics {
	return &Metrics{counter: counter}
}

// Total returns successes plus errors over the window.
func (m *Metrics) Total() int64 {
	return m.counter.Count(rolling.Success) + m.Errors()
}

// Errors returns the error total over the window.
func (m *Metrics) Errors() int64 {
	return m.counter.Sum(errorKinds...)
}

// ErrorPercent returns the rounded error percentage over the window,
// or 0 when there have been no operations.
func (m *Metrics) ErrorPercent() int {
	errors := m.Errors()
	total := m.counter.Count(rolling.Success) + errors
	if total == 0 {
		return 0
	}
	return int((100*errors + total/2) / total)
}

// Reset zeroes the window. Called when the breaker closes after a
// successful probe.
func (m *Metrics) Reset() {
	m.counter.Reset()
}

// MarkSuccess records a body that ran to completion.
func (m *Metrics) MarkSuccess() {
	m.counter.Increment(rolling.Success)
}

// MarkFailure records a body that returned an error.
func (m *Metrics) MarkFailure() {
	m.counter.Increment(rolling.Failure)
}

// MarkTimeout records a command canceled by its timeout.
func (m *Metrics) MarkTimeout() {
	m.counter.Increment(rolling.Timeout)
}

// MarkShortCircuited records a call rejected by the open breaker.
func (m *Metrics) MarkShortCircuited() {
	m.counter.Increment(rolling.ShortCircuited)
}

// MarkThreadPoolRejected records a call rejected by a full worker queue.
func (m *Metrics) MarkThreadPoolRejected() {
	m.counter.Increment(rolling.ThreadPoolRejected)
}

// MarkBulkheadRejected records a call rejected by an exhausted semaphore.
func (m *Metrics) MarkBulkheadRejected() {
	m.counter.Increment(rolling.BulkheadRejected)
}

// MarkBadRequest records a caller error excluded from health accounting.
func (m *Metrics) MarkBadRequest() {
	m.counter.Increment(rolling.BadRequest)
}
