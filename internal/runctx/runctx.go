// Package runctx encapsulates the process-wide mutable state spec §3 and
// §9 warn about: the monotonic map/reduce id counters, the completion
// flag/time, and the RNG. The original prototype kept these as Python
// class attributes shared across every simulated run, which spec §9 calls
// out as "fragile" once runs > 1. Context fixes that by making all of it
// instance state: one Context per independent simulation run.
package runctx

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/othellosim/desim/internal/simtime"
)

// Context is the per-run object every host draws ids and randomness from,
// and the object the root host reports completion to.
type Context struct {
	nextMapID    atomic.Int64
	nextReduceID atomic.Int64

	rng *rand.Rand

	completed     atomic.Bool
	completionAt  atomic.Int64
}

// New returns a fresh Context seeded deterministically from seed. Per
// spec §9 ("specify a per-simulation RNG seed as an explicit option"),
// nothing here ever touches the package-level math/rand state.
func New(seed int64) *Context {
	return &Context{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>32|1)),
	}
}

// NextMapID returns the next id in the process-wide (per-run) monotonic
// map-id sequence. Ids are never reused (spec §3).
func (c *Context) NextMapID() int64 {
	return c.nextMapID.Add(1) - 1
}

// NextReduceID returns the next id in the monotonic reduce-id sequence.
func (c *Context) NextReduceID() int64 {
	return c.nextReduceID.Add(1) - 1
}

// Rand returns the run's RNG. Not safe for concurrent use across
// goroutines; within a single simulation run only one actor is ever
// actually executing at a time (see internal/engine), so this is safe in
// practice despite the lack of internal locking.
func (c *Context) Rand() *rand.Rand {
	return c.rng
}

// Complete records now as the run's completion time. It is called exactly
// once, by the host that finalizes the root reduce (spec §3/§9: "set the
// completion flag and completion time at the moment the root host observes
// reply count equals fan-out, before any further dispatch").
func (c *Context) Complete(now simtime.Time) {
	if c.completed.CompareAndSwap(false, true) {
		c.completionAt.Store(int64(now))
	}
}

// Done reports whether the root reduce has been observed yet. Periodic
// samplers poll this to know when to stop (spec §4.5).
func (c *Context) Done() bool {
	return c.completed.Load()
}

// CompletionTime returns the recorded completion time. Only meaningful
// once Done() is true.
func (c *Context) CompletionTime() simtime.Time {
	return simtime.Time(c.completionAt.Load())
}
