package cmd

import (
	"context"
	"log/slog"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/api"
	grpcapi "github.com/othellosim/desim/internal/api/grpc"
	lpapi "github.com/othellosim/desim/internal/api/lp"
	wsapi "github.com/othellosim/desim/internal/api/ws"
	"github.com/othellosim/desim/internal/sim"
	"github.com/othellosim/desim/internal/telemetry"
)

// distCacheSize bounds how many distinct sample-file paths the distribution
// cache memoizes; in practice a single process only ever loads the one
// --service/--branch pair repeatedly across runs > 1.
const distCacheSize = 8

// NewApp wires the full control-plane + simulation-driver fx graph: config,
// logger, tracer provider, cached distribution loading, the run store, the
// three control-plane front ends, and the background goroutine that drives
// cfg.Runs simulation runs to completion. Mirrors the teacher's NewApp shape
// in its own cmd/fx.go (fx.Provide ambient concerns, then fx.Module per
// subsystem).
func NewApp(cfg *config.Config) *fx.App {
	app, _ := newAppWithStore(cfg)
	return app
}

// newAppWithStore also returns the run store so the `run` command can poll
// it for drain completion without the control plane's own long-lived loop
// (the `serve` command just blocks on a signal instead; see cmd.go).
func newAppWithStore(cfg *config.Config) (*fx.App, *api.Store) {
	store := api.NewStore(cfg.Runs)
	app := fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			func() *api.Store { return store },
			ProvideLogger,
			provideTracerProvider,
			provideTracer,
			provideDistributions,
			provideGRPCAddr,
			provideHTTPAddr,
			provideOutDir,
		),
		wsapi.Module,
		grpcapi.Module,
		lpapi.Module,
		fx.Invoke(runSimulations),
	)
	return app, store
}

func provideTracerProvider(lc fx.Lifecycle) (*sdktrace.TracerProvider, error) {
	tp, err := telemetry.NewProvider(context.Background(), ServiceName, tracingEnabled(), os.Stdout)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return tp.Shutdown(ctx) },
	})
	return tp, nil
}

func tracingEnabled() bool {
	return os.Getenv("OTHELLO_SIM_TRACING") != ""
}

func provideTracer(tp *sdktrace.TracerProvider) *telemetry.Tracer {
	return telemetry.NewTracer(tp)
}

func provideDistributions(cfg *config.Config, logger *slog.Logger) (*sim.Distributions, error) {
	cache, err := sim.NewDistributionCache(distCacheSize, logger)
	if err != nil {
		return nil, err
	}
	return cache.Load(cfg)
}

func provideGRPCAddr(cfg *config.Config) grpcapi.GRPCAddr { return grpcapi.GRPCAddr(cfg.GRPCAddr) }
func provideHTTPAddr(cfg *config.Config) lpapi.HTTPAddr   { return lpapi.HTTPAddr(cfg.HTTPAddr) }
func provideOutDir(cfg *config.Config) lpapi.OutDir       { return lpapi.OutDir(cfg.OutDir) }
