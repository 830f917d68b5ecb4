// Package netswitch implements the switch of spec §4.3: the single actor
// owning the shared network queue, computing a destination host per message
// and forwarding it after a network + memory-placement delay.
package netswitch

import (
	"context"
	"log/slog"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/engine"
	"github.com/othellosim/desim/internal/memhier"
	"github.com/othellosim/desim/internal/message"
	"github.com/othellosim/desim/internal/simtime"
	"github.com/othellosim/desim/internal/telemetry"
)

// Host is the subset of host.Host the switch needs: an id to route on and
// an Enqueue to hand a message off to once its transit delay has elapsed.
// Declared locally (mirroring the teacher's Hubber/Celler interface split in
// internal/domain/registry) so netswitch never has to import package host.
type Host interface {
	ID() int
	Enqueue(now simtime.Time, msg message.Envelope)
}

// Switch is the single network-queue actor.
type Switch struct {
	cfg   *config.Config
	sched *engine.Scheduler
	actor *engine.Actor
	inbox *engine.Chan[message.Envelope]
	hosts []Host

	logger *slog.Logger
	tracer *telemetry.Tracer
}

// Option configures ambient concerns, mirroring host.Option.
type Option func(*Switch)

// WithLogger overrides the switch's logger.
func WithLogger(l *slog.Logger) Option { return func(s *Switch) { s.logger = l } }

// WithTracer attaches an OpenTelemetry tracer.
func WithTracer(t *telemetry.Tracer) Option { return func(s *Switch) { s.tracer = t } }

// New constructs the switch and spawns its dispatch-loop actor. hosts must
// be indexed by host id (hosts[i].ID() == i), matching the round-robin
// placement hash in Destination.
func New(sched *engine.Scheduler, cfg *config.Config, hosts []Host, opts ...Option) *Switch {
	s := &Switch{
		cfg:    cfg,
		sched:  sched,
		inbox:  engine.NewChan[message.Envelope](),
		hosts:  hosts,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.actor = engine.Spawn(sched, s.run)
	return s
}

// Inbox is the shared channel every host (and the simulation bootstrap)
// publishes envelopes to.
func (s *Switch) Inbox() *engine.Chan[message.Envelope] { return s.inbox }

// spanCtxOf extracts the span context carried on a concrete envelope. It
// switches on the concrete type because Envelope doesn't expose SpanCtx
// itself — only *Map and *Reduce do.
func spanCtxOf(msg message.Envelope) context.Context {
	switch m := msg.(type) {
	case *message.Map:
		return m.SpanCtx
	case *message.Reduce:
		return m.SpanCtx
	default:
		return nil
	}
}

// run is the switch's actor body: receive one message, compute its
// destination and transit delay, and schedule a fire-and-forget enqueue at
// the destination host (spec §4.3) — the switch itself never blocks on a
// host's queue since those are unbounded.
func (s *Switch) run(a *engine.Actor) {
	for {
		msg := s.inbox.Receive(a)

		if wm, err := encode(msg); err != nil {
			s.logger.Warn("wire encode failed", "error", err, "tag", msg.ShortTag())
		} else {
			s.logger.Debug("DISPATCH", "kind", msg.Kind(), "tag", msg.ShortTag(), "wire_id", wm.UUID)
		}

		dst, ok := Destination(msg, len(s.hosts))
		if !ok {
			s.logger.Error("PROTOCOL_ERROR: unknown message variant", "tag", msg.ShortTag())
			continue
		}
		delay := simtime.Duration(s.cfg.NetDelay) + memhier.PlacementDelay(s.cfg.NICType, s.cfg)
		host := s.hosts[dst]

		_, span := s.tracer.StartDispatchSpan(spanCtxOf(msg), msg.Kind().String(), msg.ID(), dst)
		telemetry.EndDispatchSpan(span)

		a.Schedule(delay, func() {
			host.Enqueue(a.Now(), msg)
		})
	}
}
