package host

import "context"

// PendingMap is the per-map bookkeeping a host retains between expanding a
// map message and fully reducing it (spec §3). It is created on map
// expansion and destroyed once ReplyCount reaches FanOut. Leaf maps reply
// immediately without fanning out and get none, with one exception: a root
// map that is itself a leaf (depth 1) gets a one-shot entry (FanOut 1) for
// the reply it addresses to itself.
type PendingMap struct {
	// HasParent/ParentHost/ParentMsgID identify the upstream target this
	// map's aggregated reduce is ultimately forwarded to. HasParent is
	// false only for the root map.
	HasParent   bool
	ParentHost  int
	ParentMsgID int64

	// MapID is the id of the map message this state was created for.
	MapID int64

	// FanOut is the number of child maps emitted; ReplyCount is how many
	// reduces have arrived for them so far.
	FanOut     int
	ReplyCount int

	// SpanCtx is the span context of the map this pending state was created
	// for, carried forward onto the aggregated reduce this map eventually
	// emits to its own parent.
	SpanCtx context.Context
}

// Satisfied reports whether every child's reduce has arrived.
func (p *PendingMap) Satisfied() bool {
	return p.ReplyCount == p.FanOut
}
