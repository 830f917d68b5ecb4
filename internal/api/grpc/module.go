package grpc

import (
	"context"
	"log/slog"
	"net"

	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware/v2"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Module wires the control-plane gRPC server: a recovery + slog logging
// interceptor chain (the same middleware family the teacher lists in
// infra/server/grpc/interceptors, generalized from auth to recovery/logging
// since the control plane here is read-only and unauthenticated) around the
// health service, plus the teacher's otelgrpc stats handler so the gRPC
// surface gets the same span coverage host/netswitch already have.
var Module = fx.Module("api-grpc",
	fx.Provide(NewHealthService),
	fx.Provide(newServer),
	fx.Invoke(registerAndServe),
)

func newServer(logger *slog.Logger, tp *sdktrace.TracerProvider) *grpclib.Server {
	recoveryOpts := []recovery.Option{
		recovery.WithRecoveryHandler(func(p any) error {
			logger.Error("GRPC_PANIC_RECOVERED", "panic", p)
			return nil
		}),
	}
	loggingOpts := []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
	}
	return grpclib.NewServer(
		grpclib.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithTracerProvider(tp))),
		grpclib.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOpts...),
			logging.UnaryServerInterceptor(interceptorLogger(logger), loggingOpts...),
		),
		grpclib.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpts...),
			logging.StreamServerInterceptor(interceptorLogger(logger), loggingOpts...),
		),
	)
}

func interceptorLogger(l *slog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// registerAndServe registers the health service and the grpc_health_v1
// service, spawns the drain watcher, and listens in the background for the
// lifetime of the fx app.
func registerAndServe(lc fx.Lifecycle, srv *grpclib.Server, health *HealthService, addr GRPCAddr, logger *slog.Logger) {
	grpc_health_v1.RegisterHealthServer(srv, health)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", string(addr))
			if err != nil {
				return err
			}
			go health.WatchDrain(context.Background())
			go func() {
				if err := srv.Serve(lis); err != nil {
					logger.Error("GRPC_SERVE_FAILED", "error", err)
				}
			}()
			logger.Info("GRPC_LISTENING", "addr", lis.Addr().String())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.GracefulStop()
			return nil
		},
	})
}

// GRPCAddr is the listen address for the control-plane gRPC server,
// provided by cmd's fx wiring from config.
type GRPCAddr string
