package observe

import (
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestWriterSink_Format(t *testing.T) {
	var buf strings.Builder
	s := NewWriterSink(&buf)

	s.Event("mjolnir command test.NoOp execute", "RanToCompletion", 12.5)
	s.Event("mjolnir breaker test total", "total", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != "mjolnir command test.NoOp execute [RanToCompletion] 12.5" {
		t.Errorf("line[0] = %q", lines[0])
	}
	if lines[1] != "mjolnir breaker test total [total] 3" {
		t.Errorf("line[1] = %q", lines[1])
	}
}

func TestCollectingSink(t *testing.T) {
	s := NewCollectingSink()

	s.Event("a", "x", 1)
	s.Event("b", "y", 2)
	s.Event("a", "z", 3)

	if got := len(s.Events()); got != 3 {
		t.Errorf("Events() length = %d, want 3", got)
	}

	byA := s.ByService("a")
	if len(byA) != 2 {
		t.Fatalf("ByService(a) length = %d, want 2", len(byA))
	}
	if byA[1].State != "z" || byA[1].Value != 3 {
		t.Errorf("ByService(a)[1] = %+v, want state z value 3", byA[1])
	}
}

func TestCollectingSink_ConcurrentEvents(t *testing.T) {
	s := NewCollectingSink()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Event("svc", "ok", 1)
			}
		}()
	}
	wg.Wait()

	if got := len(s.Events()); got != 800 {
		t.Errorf("Events() length = %d, want 800", got)
	}
}

func TestMeterSink_NoopMeter(t *testing.T) {
	s, err := NewMeterSink(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMeterSink() error = %v", err)
	}

	// Publishing through a noop meter must not panic.
	s.Event("mjolnir breaker test error", "error", 42)
}

func TestNoopSink(t *testing.T) {
	NoopSink{}.Event("anything", "any", 0)
}
