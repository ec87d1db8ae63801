package enhance

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight caps simultaneous model calls process-wide, bounding
// cost and rate-limit exposure regardless of how many phases are in flight.
const DefaultMaxInFlight = 3

// Gate is the global admission gate for model calls. Waiters are released in
// FIFO order as slots free up.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a gate admitting at most max concurrent holders.
// Non-positive max falls back to the default.
func NewGate(max int64) *Gate {
	if max <= 0 {
		max = DefaultMaxInFlight
	}
	return &Gate{sem: semaphore.NewWeighted(max)}
}

// Acquire blocks until a slot is free or the context is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release frees a slot acquired with Acquire.
func (g *Gate) Release() {
	g.sem.Release(1)
}
