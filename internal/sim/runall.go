package sim

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/oklog/ulid"
	"golang.org/x/sync/errgroup"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/telemetry"
)

// lockedReader serializes access to a shared entropy source so concurrent
// runs can draw from one ulid.Monotonic sequence (giving sortable run ids)
// without racing on it.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

// RunAll executes cfg.Runs independent simulation runs (spec §9's "counter
// reset across runs": each run gets its own Context, so message-id counters
// restart at zero and the completion flag is cleared per run, never shared
// process-wide state). Runs execute concurrently via errgroup since each
// owns an entirely private scheduler, host set, and switch.
func RunAll(cfg *config.Config, dist *Distributions, logger *slog.Logger, tracer *telemetry.Tracer) ([]*Result, error) {
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("sim: runs must be >= 1, got %d", cfg.Runs)
	}

	entropy := ulid.Monotonic(&lockedReader{r: rand.Reader}, 0)
	results := make([]*Result, cfg.Runs)

	var g errgroup.Group
	for i := 0; i < cfg.Runs; i++ {
		i := i
		seed := cfg.Seed
		if seed == 0 {
			seed = int64(i) + 1
		} else {
			seed += int64(i)
		}
		rc := NewContext(seed, entropy)
		g.Go(func() error {
			opts := []RunOption{WithTracer(tracer)}
			if logger != nil {
				opts = append(opts, WithLogger(logger))
			}
			res := Run(cfg, dist, rc, opts...)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
