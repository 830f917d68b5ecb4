// Package engine implements the discrete-event scheduler and the
// cooperative actor runtime layered on top of it. The scheduler is the only
// piece of the simulator allowed to advance simulated time; everything else
// — hosts, the switch, the periodic samplers — reaches simulated time only
// through it.
package engine

import (
	"container/heap"

	"github.com/othellosim/desim/internal/simtime"
)

// event is a single scheduled callback. Events are ordered by (time, seq):
// seq is the tiebreak that gives FIFO semantics to events scheduled at the
// same simulated instant, per spec §4.1.
type event struct {
	at  simtime.Time
	seq uint64
	fn  func()
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(*event)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

// Scheduler is a single-threaded, time-ordered event loop. It is not safe
// for concurrent use from multiple goroutines except via the Actor runtime,
// which serializes all scheduling calls onto the loop goroutine.
type Scheduler struct {
	queue eventQueue
	now   simtime.Time
	seq   uint64
}

// NewScheduler returns a scheduler with an empty queue, now = simtime.Zero.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.queue)
	return s
}

// Now returns the time of the last-popped event (or Zero before Run starts).
func (s *Scheduler) Now() simtime.Time {
	return s.now
}

// Schedule inserts a callback to run at now+delay. delay must be >= 0;
// delay == 0 is legal and preserves FIFO order relative to other zero-delay
// events scheduled before it.
func (s *Scheduler) Schedule(delay simtime.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.queue, &event{at: s.now.Add(delay), seq: s.seq, fn: fn})
}

// Run pops events until the queue is empty. There is no wall-clock pacing:
// Run returns as soon as the simulation reaches quiescence.
func (s *Scheduler) Run() {
	for s.queue.Len() > 0 {
		ev := heap.Pop(&s.queue).(*event)
		s.now = ev.at
		ev.fn()
	}
}

// Pending reports whether any event remains queued. Exposed for periodic
// actors that want to distinguish "nothing left to do" from "waiting on a
// future tick" without inspecting scheduler internals.
func (s *Scheduler) Pending() bool {
	return s.queue.Len() > 0
}

// RunUntil pops events until the queue is empty or stop() reports true
// immediately after an event has run. Any events still queued when stop()
// fires first true (typically future ticks of a periodic sampler) are left
// unprocessed and simply discarded with the scheduler — this is what keeps
// Now() exactly equal to the simulated instant the stop condition became
// true, rather than the time of whatever tick happened to be scheduled
// next (spec §8: "now at simulation end equals the completion time
// recorded by the root-reducing host").
func (s *Scheduler) RunUntil(stop func() bool) {
	for s.queue.Len() > 0 {
		ev := heap.Pop(&s.queue).(*event)
		s.now = ev.at
		ev.fn()
		if stop() {
			return
		}
	}
}
