package cmd

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/othellosim/desim/config"
)

// ProvideLogger builds the process-wide structured logger every package
// threads through via constructor injection (spec's ambient logging
// concern) rather than touching slog's global default — mirroring the
// teacher's ProvideLogger shape in its own cmd/fx.go. When tracing is
// enabled the handler is the otelslog bridge instead of a plain JSON
// handler, so every log record also lands in the OTel log pipeline
// alongside the span-per-map-expansion traces (see internal/telemetry),
// correlated by the same trace/span ids the active context carries.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("OTHELLO_SIM_DEBUG") != "" {
		level = slog.LevelDebug
	}

	var h slog.Handler
	if tracingEnabled() {
		h = otelslog.NewHandler(ServiceName)
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h).With("service", ServiceName)
}
