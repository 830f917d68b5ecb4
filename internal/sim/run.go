package sim

import (
	"log/slog"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/engine"
	"github.com/othellosim/desim/internal/host"
	"github.com/othellosim/desim/internal/message"
	"github.com/othellosim/desim/internal/netswitch"
	"github.com/othellosim/desim/internal/simtime"
	"github.com/othellosim/desim/internal/telemetry"
)

// RunOption configures ambient concerns of a single run.
type RunOption func(*runOptions)

type runOptions struct {
	logger   *slog.Logger
	tracer   *telemetry.Tracer
	onSample func(Sample)
}

// WithLogger overrides the run's base logger.
func WithLogger(l *slog.Logger) RunOption { return func(o *runOptions) { o.logger = l } }

// WithTracer attaches an OpenTelemetry tracer to every host and the switch.
func WithTracer(t *telemetry.Tracer) RunOption { return func(o *runOptions) { o.tracer = t } }

// WithSampleSink registers a callback invoked synchronously on every queue
// sampler tick (spec §4.5) — the hook api/ws hangs its live telemetry
// broadcaster off of.
func WithSampleSink(fn func(Sample)) RunOption { return func(o *runOptions) { o.onSample = fn } }

// Run wires one switch and cfg.Hosts hosts, bootstraps the root map message,
// spawns the progress ticker and queue sampler, drains the scheduler until
// the completion flag fires, and returns the run's Result (spec §4.5).
func Run(cfg *config.Config, dist *Distributions, rc *Context, opts ...RunOption) *Result {
	o := &runOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.With("run_id", rc.ID.String(), "correlation_id", rc.CorrelationUUID.String())

	sched := engine.NewScheduler()

	hosts := make([]*host.Host, cfg.Hosts)
	switchHosts := make([]netswitch.Host, cfg.Hosts)

	sw := netswitch.New(sched, cfg, switchHosts, netswitch.WithLogger(logger), netswitch.WithTracer(o.tracer))
	for i := 0; i < cfg.Hosts; i++ {
		h := host.New(i, sched, cfg, rc.Context, sw.Inbox(), dist.Service, dist.Branch,
			host.WithLogger(logger), host.WithTracer(o.tracer))
		hosts[i] = h
		switchHosts[i] = h
	}

	hostQueues := make([]hostQueueLen, cfg.Hosts)
	for i, h := range hosts {
		hostQueues[i] = h
	}

	spawnProgressTicker(sched, rc.Context, logger)
	avgSamples, allSamples := spawnQueueSampler(sched, rc.Context, hostQueues, o.onSample)

	// Bootstrap: the root map message is the very first map id issued, so
	// `id mod host_count` always routes it to host 0 regardless of host
	// count — it travels through the switch like any other map message
	// (spec §4.3's placement hash and network delay both apply to it; see
	// DESIGN.md for why the trivial end-to-end scenario's arithmetic
	// requires this).
	root := message.NewMap(rc.NextMapID(), cfg.Depth, 0, false, 0, 0)
	sw.Inbox().Put(sched, root)

	sched.RunUntil(rc.Done)

	return buildResult(rc, sched, hosts, *avgSamples, *allSamples)
}

func buildResult(rc *Context, sched *engine.Scheduler, hosts []*host.Host, avg []Sample, all []int) *Result {
	completion := rc.CompletionTime()
	completionDur := completion.Sub(simtime.Zero)
	res := &Result{
		RunID:          rc.ID.String(),
		CompletionTime: completion,
		Hosts:          make([]HostResult, len(hosts)),
		AvgQSamples:    avg,
		AllQSamples:    all,
	}
	for i, h := range hosts {
		m := h.Metrics()
		res.Hosts[i] = HostResult{
			HostID:               h.ID(),
			MessagesProcessed:    m.MessagesProcessed,
			Utilization:          m.Utilization(completionDur),
			ExpectedAvgQueueSize: m.ExpectedAvgQueueSize(completionDur),
			TierCounts:           m.TierCounts,
		}
		for t := 0; t < 3; t++ {
			res.TierTotals[t] += m.TierCounts[t]
		}
	}
	return res
}
