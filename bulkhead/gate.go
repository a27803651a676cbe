package bulkhead

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate limits concurrent fallback executions for one dependency group. A
// caller whose primary path failed takes a permit before running its
// fallback; when the gate is full the original failure surfaces with a
// fallback-rejected marker instead of piling more work onto a struggling
// process.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	held     atomic.Int64
	rejected atomic.Int64
}

// NewGate creates a fallback gate with the given permit capacity.
func NewGate(maxConcurrent int) *Gate {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		capacity: int64(maxConcurrent),
	}
}

// TryAcquire takes a permit without blocking. Returns ErrFallbackFull
// when every permit is held.
func (g *Gate) TryAcquire() error {
	if !g.sem.TryAcquire(1) {
		g.rejected.Add(1)
		return ErrFallbackFull
	}
	g.held.Add(1)
	return nil
}

// Release returns a permit.
func (g *Gate) Release() {
	g.held.Add(-1)
	g.sem.Release(1)
}

// Stats returns the current activity counters.
func (g *Gate) Stats() Stats {
	held := int(g.held.Load())
	return Stats{
		Active:        held,
		Available:     int(g.capacity) - held,
		MaxConcurrent: int(g.capacity),
		Rejected:      g.rejected.Load(),
	}
}
