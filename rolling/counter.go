package rolling

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/mjolnir/clock"
)

// counts holds one integer per event kind.
type counts struct {
	vals [numKinds]atomic.Int64
}

// add folds other into c.
func (c *counts) add(other *counts) {
	for i := range c.vals {
		c.vals[i].Add(other.vals[i].Load())
	}
}

// sub removes other from c.
func (c *counts) sub(other *counts) {
	for i := range c.vals {
		c.vals[i].Add(-other.vals[i].Load())
	}
}

// reset zeroes every kind.
func (c *counts) reset() {
	for i := range c.vals {
		c.vals[i].Store(0)
	}
}

// bucket holds the counts for one slice of the window.
type bucket struct {
	// startTime is the start of the bucket's time range (inclusive).
	startTime time.Time
	// endTime is the end of the bucket's time range (inclusive).
	endTime time.Time
	counts  counts
}

func (b *bucket) reset() {
	if b == nil {
		return
	}
	b.startTime = time.Time{}
	b.endTime = time.Time{}
	b.counts.reset()
}

// shouldDrop reports whether the bucket starts before the window start.
func (b *bucket) shouldDrop(windowStart time.Time) bool {
	if b == nil {
		return false
	}
	return b.startTime.Before(windowStart)
}

// isExpired reports whether now is past the bucket end, or the bucket is nil.
func (b *bucket) isExpired(now time.Time) bool {
	if b == nil {
		return true
	}
	return b.endTime.Before(now)
}

// Config configures a Counter.
type Config struct {
	// Window is the total time span the counter's buckets cover. When a
	// new bucket opens, buckets that start more than Window minus one
	// bucket duration in the past are dropped, so an event can leave the
	// count before it is a full Window old.
	// Default: 10 seconds
	Window time.Duration

	// Buckets is the number of slices the window is divided into.
	// Default: 10
	Buckets int

	// Clock supplies time for bucket boundaries.
	// Default: the system clock
	Clock clock.Clock
}

// Counter is a rolling count of events over a bounded window. It keeps a
// circular queue of buckets and an aggregate that is adjusted as buckets
// enter and leave the window, so reads are O(1) and writes amortize to a
// single atomic increment.
type Counter struct {
	mu  sync.RWMutex
	clk clock.Clock

	// bucketDuration is the time slice each bucket covers.
	bucketDuration time.Duration

	// buckets is the circular queue. oldestIndex points at the earliest
	// live bucket, currentIndex at the bucket receiving writes. Both are
	// -1 while the queue is empty.
	buckets      []bucket
	currentIndex int
	oldestIndex  int

	// windowStartDelta added to now yields the window start time.
	windowStartDelta time.Duration

	// aggregate is the sum of counts across live buckets.
	aggregate counts
}

// NewCounter creates a rolling counter.
func NewCounter(cfg Config) *Counter {
	// Apply defaults
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	if cfg.Buckets <= 0 {
		cfg.Buckets = 10
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}

	bucketDuration := cfg.Window / time.Duration(cfg.Buckets)

	return &Counter{
		clk:              cfg.Clock,
		bucketDuration:   bucketDuration,
		buckets:          make([]bucket, cfg.Buckets),
		currentIndex:     -1,
		oldestIndex:      -1,
		windowStartDelta: -1 * time.Duration(cfg.Buckets-1) * bucketDuration,
	}
}

// Increment records one event of the given kind at the current time.
// Safe for concurrent use.
func (c *Counter) Increment(kind Kind) {
	b := c.currentBucketSliding()
	b.counts.vals[kind].Add(1)
	c.aggregate.vals[kind].Add(1)
}

// Count returns the total of the given kind across buckets inside the
// window at the current time. Safe for concurrent use.
func (c *Counter) Count(kind Kind) int64 {
	c.currentBucketSliding()
	return c.aggregate.vals[kind].Load()
}

// Sum returns the combined total of the given kinds over the window.
// Safe for concurrent use.
func (c *Counter) Sum(kinds ...Kind) int64 {
	c.currentBucketSliding()
	var total int64
	for _, k := range kinds {
		total += c.aggregate.vals[k].Load()
	}
	return total
}

// Reset zeroes every bucket and the aggregate. Used when a breaker closes
// after a successful probe so the next window starts clean.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.currentIndex = -1
	c.oldestIndex = -1
	c.aggregate.reset()
	for i := range c.buckets {
		c.buckets[i].reset()
	}
	c.mu.Unlock()
}

// currentBucketSliding returns the bucket covering the current time,
// sliding the queue forward when the current bucket has expired.
func (c *Counter) currentBucketSliding() *bucket {
	now := c.clk.Now()

	c.mu.RLock()
	current := c.current()
	// Read under the lock to avoid racing a concurrent slide on endTime.
	expired := current.isExpired(now)
	c.mu.RUnlock()
	if !expired {
		return current
	}

	c.mu.Lock()
	// Double-checked: another writer may have slid between the locks.
	if c.current().isExpired(now) {
		c.slide(now)
	}
	current = c.current()
	c.mu.Unlock()
	return current
}

// current returns the bucket at currentIndex, or nil when empty.
func (c *Counter) current() *bucket {
	if c.currentIndex == -1 {
		return nil
	}
	return &c.buckets[c.currentIndex]
}

// slide retires buckets that fell out of the window and opens a fresh
// bucket for now. Must be called under the write lock.
func (c *Counter) slide(now time.Time) {
	c.dropExpired(now)
	if c.currentIndex == -1 {
		c.oldestIndex = 0
		c.currentIndex = 0
		c.buckets[0].startTime = now
		c.buckets[0].endTime = c.bucketEnd(now)
		return
	}

	c.currentIndex = c.next(c.currentIndex)
	c.buckets[c.currentIndex].startTime = now
	c.buckets[c.currentIndex].endTime = c.bucketEnd(now)
}

// dropExpired walks from the oldest bucket, subtracting and resetting each
// one whose start precedes the window start. Must be called under the
// write lock.
func (c *Counter) dropExpired(now time.Time) {
	if c.currentIndex == -1 {
		return
	}

	windowStart := now.Add(c.windowStartDelta)
	for {
		b := &c.buckets[c.oldestIndex]
		if !b.shouldDrop(windowStart) {
			break
		}

		c.aggregate.sub(&b.counts)
		b.reset()
		if c.oldestIndex == c.currentIndex {
			c.oldestIndex = -1
			c.currentIndex = -1
			break
		}
		c.oldestIndex = c.next(c.oldestIndex)
	}
}

func (c *Counter) next(idx int) int {
	n := idx + 1
	if n == len(c.buckets) {
		return 0
	}
	return n
}

// bucketEnd returns the inclusive end of a bucket opened at now. The end
// is one nanosecond short of the next bucket's start so adjacent ranges
// never overlap.
func (c *Counter) bucketEnd(now time.Time) time.Time {
	return now.Add(c.bucketDuration - 1)
}
