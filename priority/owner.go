// Package priority manages the ordered list of middleware identifiers that
// decides relative dispatch order when registration order alone is not enough.
//
// A Manager never keeps its own copy of the list. It is bound to an Owner,
// reads a fresh copy before each edit and writes the result back exactly once:
//
//	owner := &priority.SliceOwner{}
//	m := priority.WithDefaults(owner, []string{})
//	m.Append("first")
//	_ = m.Before("first", "third")  // [third first]
//	_ = m.Before("third", "second") // [second third first]
//
// Lower index means higher priority: the middleware runs earlier on the way
// in and later on the way out. Identifiers are opaque strings.
//
// The package has no concurrency contract. Callers that share an Owner
// between goroutines must serialize the edits themselves.
package priority

import "sync"

// Owner holds the authoritative priority list.
type Owner interface {
	// Read returns the current list by value.
	Read() []string

	// Write replaces the list wholesale.
	Write(list []string)
}

// SliceOwner is an in-memory Owner. The zero value is an empty list.
//
// Reads and writes are individually safe for concurrent use, which lets HTTP
// handlers read the list while nothing is editing it. A Manager's
// read-compute-write sequence is still not atomic.
type SliceOwner struct {
	mu   sync.RWMutex
	list []string
}

// NewSliceOwner returns an owner holding a copy of list.
func NewSliceOwner(list ...string) *SliceOwner {
	return &SliceOwner{list: clone(list)}
}

// Read returns a copy of the stored list.
func (o *SliceOwner) Read() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return clone(o.list)
}

// Write stores a copy of list.
func (o *SliceOwner) Write(list []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = clone(list)
}

// clone copies s into a fresh non-nil slice.
func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
