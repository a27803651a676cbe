package observe

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Sink receives one event per measured occurrence.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: event publication is best-effort and must not panic.
type Sink interface {
	// Event records a measurement. service names the measured thing,
	// state qualifies it (an outcome status or gauge name suffix), and
	// value is the elapsed milliseconds or the gauge reading.
	Event(service, state string, value float64)
}

// NoopSink discards every event.
type NoopSink struct{}

// Event discards the event.
func (NoopSink) Event(service, state string, value float64) {}

// WriterSink writes one line per event in the form
// "service [state] value".
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Event writes the event line.
func (s *WriterSink) Event(service, state string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s [%s] %s\n", service, state, strconv.FormatFloat(value, 'f', -1, 64))
}

// CollectingSink retains events in memory for assertions.
type CollectingSink struct {
	mu     sync.Mutex
	events []CollectedEvent
}

// CollectedEvent is one retained event.
type CollectedEvent struct {
	Service string
	State   string
	Value   float64
}

// NewCollectingSink creates an empty collecting sink.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

// Event retains the event.
func (s *CollectingSink) Event(service, state string, value float64) {
	s.mu.Lock()
	s.events = append(s.events, CollectedEvent{Service: service, State: state, Value: value})
	s.mu.Unlock()
}

// Events returns a copy of the retained events.
func (s *CollectingSink) Events() []CollectedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CollectedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// ByService returns retained events whose service matches exactly.
func (s *CollectingSink) ByService(service string) []CollectedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CollectedEvent
	for _, e := range s.events {
		if e.Service == service {
			out = append(out, e)
		}
	}
	return out
}

// MeterSink publishes events through an OpenTelemetry meter: a counter of
// occurrences and a histogram of values, both attributed with the service
// and state strings.
type MeterSink struct {
	total metric.Int64Counter
	value metric.Float64Histogram
}

// NewMeterSink creates a sink over the given meter.
func NewMeterSink(meter metric.Meter) (*MeterSink, error) {
	total, err := meter.Int64Counter(
		"mjolnir.events.total",
		metric.WithDescription("Total events published by the fault isolation core"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	value, err := meter.Float64Histogram(
		"mjolnir.events.value",
		metric.WithDescription("Event values: elapsed milliseconds or gauge readings"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &MeterSink{total: total, value: value}, nil
}

// Event records the event against the meter.
func (s *MeterSink) Event(service, state string, value float64) {
	opt := metric.WithAttributes(
		attribute.String("mjolnir.service", service),
		attribute.String("mjolnir.state", state),
	)
	ctx := context.Background()
	s.total.Add(ctx, 1, opt)
	s.value.Record(ctx, value, opt)
}
