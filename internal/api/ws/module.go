package ws

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
)

// Module wires the hub and its HTTP handler into the fx app; the hub's
// Drain loop runs for the lifetime of the process, closed on OnStop.
var Module = fx.Module("api-ws",
	fx.Provide(NewHub),
	fx.Provide(NewHandler),
	fx.Invoke(startDrain),
)

func startDrain(lc fx.Lifecycle, hub *Hub, logger *slog.Logger) {
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go hub.Drain(stop)
			logger.Info("WS_HUB_STARTED")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			return nil
		},
	})
}
