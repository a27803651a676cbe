package command

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTimeout is the per-command timeout used when none is supplied.
const DefaultTimeout = 15 * time.Second

// Descriptor is the immutable metadata of one command instance plus its
// single-use guard.
type Descriptor struct {
	name           string
	group          Key
	breakerKey     Key
	bulkheadKey    Key
	defaultTimeout time.Duration

	// invoked flips once; a second flip attempt is the reused-command
	// programming error.
	invoked atomic.Bool

	// invalid holds a construction error surfaced on first invocation.
	invalid error
}

func newDescriptor(group Key, name string, breakerKey, bulkheadKey Key, timeout time.Duration) *Descriptor {
	d := &Descriptor{
		name:           FormatName(group, name),
		group:          group,
		breakerKey:     breakerKey,
		bulkheadKey:    bulkheadKey,
		defaultTimeout: timeout,
	}
	if d.breakerKey == "" {
		d.breakerKey = group
	}
	if d.bulkheadKey == "" {
		d.bulkheadKey = group
	}
	if timeout <= 0 {
		d.invalid = ErrInvalidTimeout
	}
	return d
}

// Name returns the full command name, <group>.<short-name> with dots in
// the group replaced by dashes.
func (d *Descriptor) Name() string {
	return d.name
}

// Group returns the dependency group key.
func (d *Descriptor) Group() Key {
	return d.group
}

// BreakerKey returns the circuit breaker key.
func (d *Descriptor) BreakerKey() Key {
	return d.breakerKey
}

// BulkheadKey returns the bulkhead key.
func (d *Descriptor) BulkheadKey() Key {
	return d.bulkheadKey
}

// DefaultTimeout returns the command's configured timeout.
func (d *Descriptor) DefaultTimeout() time.Duration {
	return d.defaultTimeout
}

// markInvoked flips the single-use guard, reporting false when the
// command was already invoked.
func (d *Descriptor) markInvoked() bool {
	return d.invoked.CompareAndSwap(false, true)
}

// nameCache caches formatted names per (group, raw name). Name
// formatting is cheap but runs on every command construction, and hot
// callers construct commands per call.
var nameCache sync.Map // nameCacheKey -> string

type nameCacheKey struct {
	group Key
	raw   string
}

// FormatName builds the full command name from a group and a short name:
// dots in the group become dashes, and a Command suffix on the short
// name is dropped.
func FormatName(group Key, name string) string {
	ck := nameCacheKey{group: group, raw: name}
	if cached, ok := nameCache.Load(ck); ok {
		return cached.(string)
	}

	short := strings.TrimSuffix(name, "Command")
	full := group.dashed() + "." + short
	nameCache.Store(ck, full)
	return full
}

// NameForType derives the short command name from v's concrete type,
// trimming a Command suffix, and formats it against group. Pointer
// types are dereferenced first.
func NameForType(group Key, v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return FormatName(group, "Anonymous")
	}
	return FormatName(group, t.Name())
}
