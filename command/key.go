package command

import "strings"

// Key names a dependency cluster. The same key selects the breaker, the
// bulkhead, and the fallback gate for every command in the cluster.
// Equality is by string content and keys are case-sensitive.
type Key string

// NewKey creates a key from s with surrounding whitespace removed.
func NewKey(s string) Key {
	return Key(strings.TrimSpace(s))
}

// String returns the key's string content.
func (k Key) String() string {
	return string(k)
}

// dashed returns the key with dots replaced by dashes, the form used
// inside command names.
func (k Key) dashed() string {
	return strings.ReplaceAll(string(k), ".", "-")
}
