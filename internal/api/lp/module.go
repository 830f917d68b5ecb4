package lp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"

	"github.com/othellosim/desim/internal/api"
	wsapi "github.com/othellosim/desim/internal/api/ws"
)

// HTTPAddr is the listen address for the control-plane HTTP server,
// provided by cmd's fx wiring from config.
type HTTPAddr string

// OutDir is the CSV output root, provided by cmd's fx wiring from config.
type OutDir string

// Module wires the chi router, the lp handler, and an HTTP server whose
// lifecycle is tied to the fx app.
var Module = fx.Module("api-lp",
	fx.Provide(func(store *api.Store, outDir OutDir) *Handler {
		return NewHandler(store, string(outDir))
	}),
	fx.Invoke(registerAndServe),
)

// registerAndServe mounts both the lp run-status/results routes and the ws
// live-telemetry handler onto one chi router (spec's three control-plane
// front ends share this HTTP listener, only gRPC health gets its own).
func registerAndServe(lc fx.Lifecycle, h *Handler, wsHandler *wsapi.Handler, addr HTTPAddr, logger *slog.Logger) {
	r := chi.NewRouter()
	h.Routes(r)
	r.Handle("/ws", wsHandler)
	srv := &http.Server{Addr: string(addr), Handler: r}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("LP_SERVE_FAILED", "error", err)
				}
			}()
			logger.Info("LP_LISTENING", "addr", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
