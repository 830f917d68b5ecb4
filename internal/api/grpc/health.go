// Package grpc exposes the control plane's gRPC health surface: a standard
// grpc_health_v1.HealthServer that flips to NOT_SERVING once every
// configured run has drained, giving a process supervisor a real,
// protobuf-wire-compatible signal without hand-authoring a simulator-specific
// .proto for this exercise (see SPEC_FULL.md Domain Stack).
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/othellosim/desim/internal/api"
)

const serviceName = "othellosim.desim"

// pollInterval is how often the watcher checks the run store for drain
// completion; runs finish on simulated time, not wall clock, so there is no
// tighter signal to wait on than polling the store.
const pollInterval = 200 * time.Millisecond

// HealthService wraps grpc/health's reference Server implementation and a
// background watcher that serves SERVING while runs are outstanding.
type HealthService struct {
	*health.Server
	store  *api.Store
	logger *slog.Logger
}

// NewHealthService constructs the service and sets the initial status to
// SERVING for the simulator's overall service name.
func NewHealthService(store *api.Store, logger *slog.Logger) *HealthService {
	h := &HealthService{
		Server: health.NewServer(),
		store:  store,
		logger: logger,
	}
	h.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return h
}

// WatchDrain polls the store until every configured run has drained, then
// flips the health status to NOT_SERVING, and returns. Intended to run in
// its own goroutine for the lifetime of the serve process (spec §9's
// Non-goal-adjacent "optionally keep the control-plane API up after runs
// drain, for interactive result inspection" — NOT_SERVING still serves
// reads, it only tells a supervisor the simulator itself is done producing
// new work). Named distinctly from the embedded health.Server.Watch (the
// gRPC streaming RPC) so it doesn't shadow that method's promotion.
func (h *HealthService) WatchDrain(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.store.AllDrained() {
				h.logger.Info("ALL_RUNS_DRAINED")
				h.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
				return
			}
		}
	}
}

var _ grpc_health_v1.HealthServer = (*HealthService)(nil)
