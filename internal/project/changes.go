package project

import "sync/atomic"

// ChangeTracker is the monotonic version counter of a document.
//
// It is bumped once per mutating call and never decreases. The value means
// nothing beyond "strictly increases with each edit"; it exists so caches
// can tell whether the tree moved under them.
//
// Thread-safety: reads and bumps are atomic, so the evaluation gate may read
// the version from any goroutine while the writer edits.
type ChangeTracker struct {
	seq atomic.Int64
}

// Next increments the version and returns the new value.
func (c *ChangeTracker) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the version without incrementing.
func (c *ChangeTracker) Current() int64 {
	return c.seq.Load()
}
