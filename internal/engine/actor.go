package engine

import "github.com/othellosim/desim/internal/simtime"

// Actor is a cooperative process running over a Scheduler. Go has no native
// generator/coroutine primitive, so each Actor's body runs on its own
// goroutine, but the two control-flow primitives it may call — Sleep and
// Receive — hand control back to the scheduler's Run loop via a baton
// channel pair and block until the scheduler resumes them. At any instant
// exactly one goroutine is actually executing business logic; the rest are
// parked on a channel receive. This reproduces the single-threaded,
// deterministic semantics of spec §5 without a real coroutine/generator
// facility: no two actor bodies ever run concurrently, and Sleep/Receive are
// the only suspension points, exactly as required.
type Actor struct {
	sched  *Scheduler
	resume chan struct{} // scheduler -> actor: proceed
	yield  chan struct{} // actor -> scheduler: I have parked (or finished)
}

// Spawn starts body on its own goroutine and blocks the caller until body
// reaches its first suspension point (or returns without ever suspending).
// Spawn must be called from the scheduler's own goroutine (e.g. from inside
// a Schedule callback, or before Run starts) so the handoff below is safe.
func Spawn(sched *Scheduler, body func(a *Actor)) *Actor {
	a := &Actor{
		sched:  sched,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	go func() {
		body(a)
		a.yield <- struct{}{}
	}()
	<-a.yield
	return a
}

// Sleep suspends the calling actor until simulated time has advanced by d.
func (a *Actor) Sleep(d simtime.Duration) {
	a.sched.Schedule(d, func() {
		a.resume <- struct{}{}
		<-a.yield
	})
	a.yield <- struct{}{}
	<-a.resume
}

// Now returns the scheduler's current simulated time. Safe to call from
// within an actor body between suspension points.
func (a *Actor) Now() simtime.Time {
	return a.sched.Now()
}

// Schedule lets an actor body fire a plain (non-actor) callback at a future
// time without suspending itself — used for "fire and forget" transmissions
// such as a host handing a reply to the switch.
func (a *Actor) Schedule(delay simtime.Duration, fn func()) {
	a.sched.Schedule(delay, fn)
}
