package host

import "github.com/othellosim/desim/internal/simtime"

// accessFIFO records the fetch latency assigned to each enqueued message,
// in enqueue order, and hands them back out in that same order as the host
// dequeues messages.
//
// spec §9 flags the original prototype's choice of a LIFO stack here as a
// likely bug: under FIFO queue semantics a LIFO access-time stack pairs the
// *oldest* queued message with the *newest* enqueue's access time. This
// implementation takes the spec's recommended fix (option (b)): a FIFO,
// so the latency paired with a dequeued message is the one recorded at
// that message's own enqueue. See DESIGN.md for the resolved Open Question.
type accessFIFO struct {
	items []simtime.Duration
}

func newAccessFIFO() *accessFIFO {
	return &accessFIFO{}
}

// Push records the access time assigned at enqueue.
func (f *accessFIFO) Push(d simtime.Duration) {
	f.items = append(f.items, d)
}

// Pop returns and removes the oldest recorded access time. Popping an
// empty FIFO is a host/switch protocol invariant violation — it indicates
// a message was dequeued without ever being enqueued through Host.Enqueue —
// and panics rather than silently fabricating a zero delay.
func (f *accessFIFO) Pop() simtime.Duration {
	if len(f.items) == 0 {
		panic("host: access-time FIFO underflow")
	}
	d := f.items[0]
	f.items = f.items[1:]
	return d
}
