package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Aggregator folds multiple checkers into one process-level verdict.
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator creates an aggregator over the given checkers.
func NewAggregator(checkers ...Checker) *Aggregator {
	return &Aggregator{checkers: checkers}
}

// Register adds a checker.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	a.checkers = append(a.checkers, c)
	a.mu.Unlock()
}

// Report is the aggregate of all checks.
type Report struct {
	// Status is the worst status across all checks.
	Status Status

	// Checks holds each checker's result by name.
	Checks map[string]Result

	// Timestamp is when the report was assembled.
	Timestamp time.Time
}

// Check runs every registered checker and folds the results. The
// aggregate status is the worst individual status; an empty aggregator
// reports healthy.
func (a *Aggregator) Check(ctx context.Context) Report {
	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]Result, len(checkers)),
		Timestamp: time.Now(),
	}

	for _, c := range checkers {
		res := c.Check(ctx)
		report.Checks[c.Name()] = res
		if res.Status > report.Status {
			report.Status = res.Status
		}
	}
	return report
}

// Names returns the registered checker names, sorted.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.checkers))
	for _, c := range a.checkers {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}
