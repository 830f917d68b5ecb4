// Package message defines the two wire-level message kinds that flow
// between hosts and the switch: map messages (work to expand) and reduce
// messages (replies aggregating completed work). See spec §3.
package message

import (
	"context"

	"github.com/lithammer/shortuuid/v3"
	"github.com/othellosim/desim/internal/simtime"
)

// Kind distinguishes the two message variants the switch and hosts dispatch on.
type Kind int8

const (
	KindMap Kind = iota + 1
	KindReduce
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindReduce:
		return "reduce"
	default:
		return "unknown"
	}
}

// Envelope is the shared contract every message satisfies, mirroring the
// teacher's Eventer interface shape (internal/domain/event/event.go): a
// small, uniform surface for ids, enqueue times and logging. Kind() names
// the variant in logs, wire envelopes and spans; the host receive loop and
// the switch's Destination dispatch with a type switch on *Map / *Reduce.
type Envelope interface {
	Kind() Kind
	ID() int64
	EnqueueTime() simtime.Time
	SetEnqueueTime(simtime.Time)
	// ShortTag is a short, human-legible identifier for debug logging only;
	// it carries no routing semantics (the canonical id is ID()).
	ShortTag() string
}

// Map is a unit of work representing a subtree to be expanded at a host.
type Map struct {
	id          int64
	MaxDepth    int
	CurDepth    int
	HasParent   bool
	SourceHost  int
	SourceMsgID int64
	enqueueAt   simtime.Time
	tag         string

	// SpanCtx carries the OpenTelemetry span context of the map this message
	// belongs to across the host/switch boundary, mirroring the teacher's
	// msg.SetContext(ctx) pattern (internal/adapter/pubsub/dispatcher.go).
	// Nil is valid and means tracing is disabled for this message; see
	// internal/telemetry.
	SpanCtx context.Context
}

// NewMap constructs a map message. id must come from a Context's monotonic
// sequence (spec §3/§9); this constructor never allocates its own id so that
// independent simulation runs can never collide on id space.
func NewMap(id int64, maxDepth, curDepth int, hasParent bool, sourceHost int, sourceMsgID int64) *Map {
	return &Map{
		id:          id,
		MaxDepth:    maxDepth,
		CurDepth:    curDepth,
		HasParent:   hasParent,
		SourceHost:  sourceHost,
		SourceMsgID: sourceMsgID,
		tag:         shortuuid.New(),
	}
}

func (m *Map) Kind() Kind                          { return KindMap }
func (m *Map) ID() int64                           { return m.id }
func (m *Map) EnqueueTime() simtime.Time           { return m.enqueueAt }
func (m *Map) SetEnqueueTime(t simtime.Time)       { m.enqueueAt = t }
func (m *Map) ShortTag() string                    { return "map-" + m.tag[:8] }

// IsLeaf reports whether this map is at the maximum expansion depth and
// must reply directly instead of fanning out further (spec §4.2).
func (m *Map) IsLeaf() bool {
	return m.CurDepth == m.MaxDepth-1
}

// Reduce is a reply carrying aggregation of a completed subtree back to its parent.
type Reduce struct {
	id           int64
	TargetHostID int
	TargetMsgID  int64
	enqueueAt    simtime.Time
	tag          string

	// SpanCtx carries the span context of the map this reduce is replying
	// to, so the reduce's own switch hop nests under that map's span.
	SpanCtx context.Context
}

// NewReduce constructs a reduce message; id follows the same rule as NewMap.
func NewReduce(id int64, targetHostID int, targetMsgID int64) *Reduce {
	return &Reduce{
		id:           id,
		TargetHostID: targetHostID,
		TargetMsgID:  targetMsgID,
		tag:          shortuuid.New(),
	}
}

func (r *Reduce) Kind() Kind                    { return KindReduce }
func (r *Reduce) ID() int64                     { return r.id }
func (r *Reduce) EnqueueTime() simtime.Time     { return r.enqueueAt }
func (r *Reduce) SetEnqueueTime(t simtime.Time) { r.enqueueAt = t }
func (r *Reduce) ShortTag() string              { return "rdc-" + r.tag[:8] }

var (
	_ Envelope = (*Map)(nil)
	_ Envelope = (*Reduce)(nil)
)
