package netswitch

import "github.com/othellosim/desim/internal/message"

// Destination implements spec §4.3's deterministic placement hash: a
// round-robin-by-id for map messages, and direct addressing for reduces.
// msg.id mod host_count is preserved verbatim, including its known weakness
// (it concentrates load when fan-out divides host_count) — spec §9 asks
// implementers not to substitute a "real" hash without an explicit opt-in
// flag, and none is added here.
//
// An unrecognized envelope variant is a protocol error, not a fatal one:
// spec §7's error taxonomy calls for it to be logged and dropped, the same
// treatment host.go gives an unknown message variant or an unknown reduce
// target. ok reports false in that case; the caller is responsible for
// logging and dropping msg instead of dispatching it.
func Destination(msg message.Envelope, hostCount int) (dst int, ok bool) {
	switch m := msg.(type) {
	case *message.Map:
		return int(m.ID() % int64(hostCount)), true
	case *message.Reduce:
		return m.TargetHostID, true
	default:
		return 0, false
	}
}
