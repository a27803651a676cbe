package bulkhead

import "sync"

// Stats is a point-in-time view of a bulkhead's activity.
type Stats struct {
	// Active is the number of permits currently held.
	Active int
	// MaxActive is the high-water mark of concurrent holders.
	MaxActive int
	// Available is the number of free permits.
	Available int
	// MaxConcurrent is the permit capacity.
	MaxConcurrent int
	// Rejected is the total number of rejected acquisitions.
	Rejected int64
}

// DefaultMaxConcurrent is the permit capacity used when none is
// configured.
const DefaultMaxConcurrent = 10

// Semaphore is the non-queuing bulkhead variant: a fixed number of
// permits acquired before the command body runs on the caller's
// goroutine and released when it completes.
type Semaphore struct {
	sem chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewSemaphore creates a semaphore bulkhead with the given permit
// capacity.
func NewSemaphore(maxConcurrent int) *Semaphore {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Semaphore{
		sem: make(chan struct{}, maxConcurrent),
	}
}

// TryAcquire takes a permit without blocking. Returns ErrFull when every
// permit is held.
func (s *Semaphore) TryAcquire() error {
	select {
	case s.sem <- struct{}{}:
		s.mu.Lock()
		s.active++
		if s.active > s.maxActive {
			s.maxActive = s.active
		}
		s.mu.Unlock()
		return nil
	default:
		s.mu.Lock()
		s.rejected++
		s.mu.Unlock()
		return ErrFull
	}
}

// Release returns a permit. Every successful TryAcquire must be paired
// with exactly one Release.
func (s *Semaphore) Release() {
	select {
	case <-s.sem:
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	default:
		// Unpaired release; permits never go negative.
	}
}

// Stats returns the current activity counters.
func (s *Semaphore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Active:        s.active,
		MaxActive:     s.maxActive,
		Available:     cap(s.sem) - s.active,
		MaxConcurrent: cap(s.sem),
		Rejected:      s.rejected,
	}
}
