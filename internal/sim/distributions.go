package sim

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"

	"github.com/othellosim/desim/config"
)

// Distributions holds the two sample sequences a run draws from (spec §6):
// service-time samples (floats, one per line) and branching-factor samples
// (positive integers, one per line).
type Distributions struct {
	Service []float64
	Branch  []int
}

// DistributionCache memoizes parsed sample files by path, exactly as
// configured (relative paths are not resolved), so that
// runs > 1 against the same input files — the common case — only parses
// once (SPEC_FULL's hashicorp/golang-lru wiring), and guards reloads with a
// circuit breaker so a flaky mounted sample file (relevant once
// --watch-samples is set) fails fast with a configuration error instead of
// retrying forever.
type DistributionCache struct {
	service *lru.Cache[string, []float64]
	branch  *lru.Cache[string, []int]
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewDistributionCache builds a cache holding up to size entries per file
// kind.
func NewDistributionCache(size int, logger *slog.Logger) (*DistributionCache, error) {
	svc, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, err
	}
	br, err := lru.New[string, []int](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sample-file-reload",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &DistributionCache{service: svc, branch: br, breaker: breaker, logger: logger}, nil
}

// Invalidate drops any cached parse of path, forcing the next Load to
// re-read it. No caller in this repository invokes it.
func (c *DistributionCache) Invalidate(path string) {
	c.service.Remove(path)
	c.branch.Remove(path)
}

// Load parses cfg.Service and cfg.Branch, using the cache where possible.
// An empty distribution is a fatal configuration error (spec §7).
func (c *DistributionCache) Load(cfg *config.Config) (*Distributions, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		svc, err := c.loadFloats(cfg.Service)
		if err != nil {
			return nil, err
		}
		branch, err := c.loadInts(cfg.Branch)
		if err != nil {
			return nil, err
		}
		if len(svc) == 0 {
			return nil, fmt.Errorf("sim: %s: empty service-time distribution", cfg.Service)
		}
		if len(branch) == 0 {
			return nil, fmt.Errorf("sim: %s: empty branching-factor distribution", cfg.Branch)
		}
		return &Distributions{Service: svc, Branch: branch}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Distributions), nil
}

func (c *DistributionCache) loadFloats(path string) ([]float64, error) {
	if v, ok := c.service.Get(path); ok {
		return v, nil
	}
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var out []float64
	for n, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			c.logger.Warn("sim: skipping malformed service-time sample", "path", path, "line", n+1, "text", line)
			continue
		}
		out = append(out, v)
	}
	c.service.Add(path, out)
	return out, nil
}

func (c *DistributionCache) loadInts(path string) ([]int, error) {
	if v, ok := c.branch.Get(path); ok {
		return v, nil
	}
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var out []int
	for n, line := range lines {
		v, err := strconv.Atoi(line)
		if err != nil || v <= 0 {
			c.logger.Warn("sim: skipping malformed branch-factor sample", "path", path, "line", n+1, "text", line)
			continue
		}
		out = append(out, v)
	}
	c.branch.Add(path, out)
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sim: opening sample file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sim: reading sample file: %w", err)
	}
	return lines, nil
}
