package host

import (
	"log/slog"

	"github.com/othellosim/desim/internal/telemetry"
)

// Option configures ambient (non-protocol) concerns of a Host, mirroring the
// teacher's functional-options shape (internal/domain/registry/options.go).
type Option func(*Host)

// WithLogger overrides the host's logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithTracer attaches an OpenTelemetry tracer. A nil tracer (the default)
// produces no-op spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(h *Host) { h.tracer = t }
}
