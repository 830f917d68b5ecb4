// Package host implements the per-compute-node actor of spec §4.2: it
// services map messages (drawing a service time and branching factor from
// sample distributions), fans out child maps or replies directly when it is
// a leaf, and aggregates reduce replies until a map's fan-out is satisfied.
package host

import (
	"log/slog"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/engine"
	"github.com/othellosim/desim/internal/memhier"
	"github.com/othellosim/desim/internal/message"
	"github.com/othellosim/desim/internal/runctx"
	"github.com/othellosim/desim/internal/simtime"
	"github.com/othellosim/desim/internal/telemetry"
)

// Host is one compute node: an engine.Actor looping over its inbound queue.
type Host struct {
	id  int
	cfg *config.Config
	ctx *runctx.Context

	sched    *engine.Scheduler
	actor    *engine.Actor
	inbox    *engine.Chan[message.Envelope]
	toSwitch *engine.Chan[message.Envelope]

	serviceSamples []float64
	branchSamples  []int

	access  *accessFIFO
	pending map[int64]*PendingMap
	metrics Metrics

	logger *slog.Logger
	tracer *telemetry.Tracer
}

// New constructs a host and spawns its receive-loop actor. toSwitch is the
// switch's shared inbound channel (spec §4.3): hosts never address each
// other directly, every outgoing message — map fan-out or reduce reply —
// goes there first.
func New(id int, sched *engine.Scheduler, cfg *config.Config, rc *runctx.Context, toSwitch *engine.Chan[message.Envelope], serviceSamples []float64, branchSamples []int, opts ...Option) *Host {
	h := &Host{
		id:             id,
		cfg:            cfg,
		ctx:            rc,
		sched:          sched,
		inbox:          engine.NewChan[message.Envelope](),
		toSwitch:       toSwitch,
		serviceSamples: serviceSamples,
		branchSamples:  branchSamples,
		access:         newAccessFIFO(),
		pending:        make(map[int64]*PendingMap),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("host_id", id)
	h.actor = engine.Spawn(sched, h.run)
	return h
}

// ID returns the host's index (also its switch-routing destination id).
func (h *Host) ID() int { return h.id }

// Metrics returns the host's accumulated counters (spec §4.2).
func (h *Host) Metrics() *Metrics { return &h.metrics }

// QueueLen reports the current inbound queue length, used by the periodic
// queue sampler (spec §4.5).
func (h *Host) QueueLen() int { return h.inbox.Len() }

// Enqueue is invoked by the switch (or the simulation bootstrap) to place
// msg onto this host's queue (spec §4.2). It stamps the enqueue time,
// classifies the resulting queue depth into a memory tier, and records the
// corresponding fetch latency for this host's receive loop to pay later.
func (h *Host) Enqueue(now simtime.Time, msg message.Envelope) {
	msg.SetEnqueueTime(now)
	h.inbox.Put(h.sched, msg)
	tier := memhier.Classify(h.inbox.Len(), h.cfg.NICBufSize, h.cfg.LLCSize)
	h.access.Push(memhier.FetchDelay(tier, h.cfg))
	h.metrics.recordEnqueueTier(tier)
	h.logger.Debug("ENQUEUE", "kind", msg.Kind(), "tag", msg.ShortTag(), "tier", tier, "qlen", h.inbox.Len())
}

// run is the host's actor body: receive, pay the access-time latency, then
// dispatch on message variant (spec §4.2).
func (h *Host) run(a *engine.Actor) {
	for {
		msg := h.inbox.Receive(a)
		fetch := h.access.Pop()
		a.Sleep(fetch)
		now := a.Now()
		h.metrics.recordDequeue(now.Sub(msg.EnqueueTime()))

		switch m := msg.(type) {
		case *message.Map:
			h.handleMap(a, m)
		case *message.Reduce:
			h.handleReduce(a, m)
		default:
			h.logger.Error("PROTOCOL_ERROR: unknown message variant", "tag", msg.ShortTag())
		}
	}
}

func (h *Host) drawService() simtime.Duration {
	if len(h.serviceSamples) == 0 {
		panic("host: empty service-time distribution")
	}
	idx := h.ctx.Rand().IntN(len(h.serviceSamples))
	return simtime.Duration(h.serviceSamples[idx])
}

func (h *Host) drawBranch() int {
	if len(h.branchSamples) == 0 {
		panic("host: empty branching-factor distribution")
	}
	idx := h.ctx.Rand().IntN(len(h.branchSamples))
	return h.branchSamples[idx]
}

// handleMap implements spec §4.2 "On map message m".
func (h *Host) handleMap(a *engine.Actor, m *message.Map) {
	spanCtx, span := h.tracer.StartMapSpan(m.SpanCtx, h.id, m.ID(), m.CurDepth, m.MaxDepth)

	service := h.drawService()
	h.metrics.recordService(service)
	a.Sleep(service)

	if m.IsLeaf() {
		targetHost, targetMsg := m.SourceHost, m.SourceMsgID
		if !m.HasParent {
			// The root map is itself a leaf (depth == 1): there is no parent
			// to reply to, so register a one-shot pending entry for itself
			// and address the reply to itself. Its own arrival back at this
			// host then satisfies the same completion path as any other
			// root-pending-map, below in handleReduce.
			h.pending[m.ID()] = &PendingMap{HasParent: false, MapID: m.ID(), FanOut: 1}
			targetHost, targetMsg = h.id, m.ID()
		}
		rid := h.ctx.NextReduceID()
		reduce := message.NewReduce(rid, targetHost, targetMsg)
		h.toSwitch.Put(h.sched, reduce)
		telemetry.EndMapSpan(span, true)
		return
	}

	branch := h.drawBranch()
	h.pending[m.ID()] = &PendingMap{
		HasParent:   m.HasParent,
		ParentHost:  m.SourceHost,
		ParentMsgID: m.SourceMsgID,
		MapID:       m.ID(),
		FanOut:      branch,
		SpanCtx:     spanCtx,
	}
	for i := 0; i < branch; i++ {
		cid := h.ctx.NextMapID()
		child := message.NewMap(cid, m.MaxDepth, m.CurDepth+1, true, h.id, m.ID())
		child.SpanCtx = spanCtx
		h.toSwitch.Put(h.sched, child)
	}
	telemetry.EndMapSpan(span, false)
}

// handleReduce implements spec §4.2 "On reduce message r".
func (h *Host) handleReduce(a *engine.Actor, r *message.Reduce) {
	pm, ok := h.pending[r.TargetMsgID]
	if !ok {
		h.logger.Error("PROTOCOL_ERROR: reduce for unknown map id", "target_msg_id", r.TargetMsgID, "tag", r.ShortTag())
		return
	}
	pm.ReplyCount++
	if !pm.Satisfied() {
		return
	}
	delete(h.pending, r.TargetMsgID)

	if !pm.HasParent {
		// Root: record completion now, before any further dispatch (spec §9).
		h.ctx.Complete(a.Now())
		h.logger.Info("SIMULATION_COMPLETE", "completion_time", a.Now())
		return
	}

	rid := h.ctx.NextReduceID()
	up := message.NewReduce(rid, pm.ParentHost, pm.ParentMsgID)
	up.SpanCtx = pm.SpanCtx
	h.toSwitch.Put(h.sched, up)
}
