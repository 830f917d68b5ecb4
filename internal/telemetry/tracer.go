// Package telemetry instruments a run's fan-out/fan-in tree as an OpenTelemetry
// trace: one span per host's processing of one map message, parented on the
// span of the map message that spawned it, so a completed run's trace tree is
// the game-tree shape itself. This is ambient observability (SPEC_FULL.md's
// Ambient Stack), not part of the simulated protocol. Span start and end
// timestamps are the wall-clock instants at which the simulation goroutine
// opened and closed each span; they do not carry simulated time (the
// simulated position of a map is only visible through its depth attributes).
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer opens and closes spans around a host's processing of one map
// message. A nil *Tracer is valid and produces no-op spans, so callers never
// need to branch on whether tracing is enabled.
type Tracer struct {
	tracer trace.Tracer
}

// NewProvider builds a TracerProvider writing spans to w (stdouttrace), or a
// no-op provider if enabled is false. Callers are responsible for calling
// Shutdown on the returned provider during fx's OnStop hook.
func NewProvider(ctx context.Context, serviceName string, enabled bool, w io.Writer) (*sdktrace.TracerProvider, error) {
	if !enabled {
		return sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample())), nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(0)),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

// NewTracer wraps a TracerProvider's named tracer. Passing a nil provider
// yields a Tracer whose spans are all no-ops (otel.GetTracerProvider's
// default), matching the "disabled" behavior of NewProvider(..., false, ...).
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer("othellosim/desim")}
}

// StartMapSpan opens a span for a host's processing of one map message,
// parented on parentCtx (carried on the message itself between hosts; see
// message.Map.SpanCtx). Returns the derived context to store on any child
// messages this map expands into.
func (t *Tracer) StartMapSpan(parentCtx context.Context, hostID int, mapID int64, depth, maxDepth int) (context.Context, trace.Span) {
	if t == nil {
		return parentCtx, trace.SpanFromContext(parentCtx)
	}
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return t.tracer.Start(parentCtx, "map.expand",
		trace.WithAttributes(
			attribute.Int("host.id", hostID),
			attribute.Int64("map.id", mapID),
			attribute.Int("map.depth", depth),
			attribute.Int("map.max_depth", maxDepth),
		),
	)
}

// EndMapSpan closes span, recording whether the map turned out to be a leaf.
func EndMapSpan(span trace.Span, isLeaf bool) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Bool("map.leaf", isLeaf))
	span.End()
}

// StartDispatchSpan opens a short-lived span around the switch's routing of
// one message (map or reduce), nested under that message's own SpanCtx.
func (t *Tracer) StartDispatchSpan(parentCtx context.Context, kind string, msgID int64, destHost int) (context.Context, trace.Span) {
	if t == nil {
		return parentCtx, trace.SpanFromContext(parentCtx)
	}
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return t.tracer.Start(parentCtx, "switch.dispatch",
		trace.WithAttributes(
			attribute.String("message.kind", kind),
			attribute.Int64("message.id", msgID),
			attribute.Int("dest.host_id", destHost),
		),
	)
}

// EndDispatchSpan closes a span opened by StartDispatchSpan.
func EndDispatchSpan(span trace.Span) {
	if span == nil {
		return
	}
	span.End()
}
