package sim

import (
	"log/slog"

	"github.com/othellosim/desim/internal/engine"
	"github.com/othellosim/desim/internal/runctx"
	"github.com/othellosim/desim/internal/simtime"
)

const (
	progressTickPeriod = simtime.Duration(100_000)
	queueSamplePeriod  = simtime.Duration(1_000)
)

// Sample is one queue-sampler tick (spec §4.5 / §6's avg_q_samples.csv row).
type Sample struct {
	Time     simtime.Time
	AvgQSize float64
}

// hostQueueLen is the subset of host.Host the sampler needs.
type hostQueueLen interface {
	QueueLen() int
}

// spawnProgressTicker starts the observational progress-ticker actor (spec
// §4.5): every 100,000ns, log a progress line, until the completion flag
// fires.
func spawnProgressTicker(sched *engine.Scheduler, rc *runctx.Context, logger *slog.Logger) {
	engine.Spawn(sched, func(a *engine.Actor) {
		for {
			a.Sleep(progressTickPeriod)
			if rc.Done() {
				return
			}
			logger.Info("PROGRESS", "now", a.Now())
		}
	})
}

// spawnQueueSampler starts the periodic queue-depth sampler (spec §4.5):
// every 1,000ns, record (now, average queue length across hosts) and
// concatenate every per-host length into a flat pool, until completion.
// onSample, if non-nil, is invoked synchronously from the simulation's own
// goroutine with every tick — callers needing to fan it out elsewhere
// (e.g. api/ws's lfq-backed broadcaster) must not block in it.
func spawnQueueSampler(sched *engine.Scheduler, rc *runctx.Context, hosts []hostQueueLen, onSample func(Sample)) (avgSamples *[]Sample, allSamples *[]int) {
	avg := make([]Sample, 0, 256)
	all := make([]int, 0, 256*len(hosts))
	engine.Spawn(sched, func(a *engine.Actor) {
		for {
			a.Sleep(queueSamplePeriod)
			if rc.Done() {
				return
			}
			total := 0
			for _, h := range hosts {
				l := h.QueueLen()
				all = append(all, l)
				total += l
			}
			s := Sample{Time: a.Now(), AvgQSize: float64(total) / float64(len(hosts))}
			avg = append(avg, s)
			if onSample != nil {
				onSample(s)
			}
		}
	})
	return &avg, &all
}
