package cmd

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"

	"github.com/oklog/ulid"
	"go.uber.org/fx"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/api"
	"github.com/othellosim/desim/internal/api/ws"
	"github.com/othellosim/desim/internal/sim"
	"github.com/othellosim/desim/internal/telemetry"
)

// runSimulations drives cfg.Runs independent runs in the background,
// publishing each run's live queue samples to the ws hub and recording
// start/finish in the run store, so the control-plane API (spec's
// Non-goal-adjacent §9 addition) has something to report on while the
// simulation itself proceeds entirely on its own simulated clock.
func runSimulations(lc fx.Lifecycle, cfg *config.Config, dist *sim.Distributions, store *api.Store, hub *ws.Hub, tracer *telemetry.Tracer, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go runAllTracked(cfg, dist, store, hub, tracer, logger)
			return nil
		},
	})
}

func runAllTracked(cfg *config.Config, dist *sim.Distributions, store *api.Store, hub *ws.Hub, tracer *telemetry.Tracer, logger *slog.Logger) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < cfg.Runs; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			seed := cfg.Seed
			if seed == 0 {
				seed = int64(i) + 1
			} else {
				seed += int64(i)
			}

			mu.Lock()
			rc := sim.NewContext(seed, entropy)
			mu.Unlock()

			store.Start(rc.ID.String())
			res := sim.Run(cfg, dist, rc,
				sim.WithLogger(logger),
				sim.WithTracer(tracer),
				sim.WithSampleSink(hub.Publish),
			)

			writer, err := sim.NewResultWriter(cfg.OutDir)
			if err != nil {
				store.Finish(rc.ID.String(), nil, err)
				logger.Error("RESULT_WRITER_INIT_FAILED", "error", err)
				return
			}
			if err := writer.Write(res); err != nil {
				store.Finish(rc.ID.String(), nil, err)
				logger.Error("RESULT_WRITE_FAILED", "run_id", rc.ID.String(), "error", err)
				return
			}
			store.Finish(rc.ID.String(), res, nil)
			logger.Info("RUN_COMPLETE", "run_id", rc.ID.String(), "completion_time", res.CompletionTime)
		}()
	}
	wg.Wait()
}
