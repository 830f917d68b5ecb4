// Package simtime defines the simulated clock used by the discrete-event
// engine. It has no relationship to wall-clock time: a simulation with no
// configured pacing can complete a multi-hour clock's worth of events in
// microseconds of real time.
package simtime

import "fmt"

// Time is a simulated instant, expressed in nanoseconds by convention.
// It is monotonic and only ever advances when the scheduler pops the next
// event off its queue.
type Time int64

// Duration is a simulated interval, same units as Time.
type Duration int64

// Zero is the instant the scheduler starts at.
const Zero Time = 0

// Add returns t advanced by d. d must be non-negative; the engine enforces
// this at the Schedule call site rather than here.
func (t Time) Add(d Duration) Time {
	return t + Time(d)
}

// Sub returns the duration between two instants.
func (t Time) Sub(u Time) Duration {
	return Duration(t - u)
}

func (t Time) String() string {
	return fmt.Sprintf("%dns", int64(t))
}

func (d Duration) String() string {
	return fmt.Sprintf("%dns", int64(d))
}
