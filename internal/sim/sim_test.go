package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/sim"
)

func baseConfig() *config.Config {
	return &config.Config{
		NICType:       config.NICReg,
		NICBufSize:    8,
		LLCSize:       24,
		MemDelay:      0,
		LLCDelay:      0,
		RegDelay:      0,
		MemAccessTime: 0,
		LLCAccessTime: 0,
		RegAccessTime: 0,
		Runs:          1,
	}
}

// Scenario 1 (spec §8): depth=1, hosts=1 — the root map is a leaf, reduces
// directly to itself. Expected completion time 700ns, traced hop by hop in
// DESIGN.md's "Resolved ambiguity" entry.
func TestRun_Scenario1_Trivial(t *testing.T) {
	cfg := baseConfig()
	cfg.Depth = 1
	cfg.Hosts = 1
	cfg.NetDelay = 100

	dist := &sim.Distributions{Service: []float64{500}, Branch: []int{1}}
	rc := sim.NewContext(1, nil)

	res := sim.Run(cfg, dist, rc)

	assert.EqualValues(t, 700, res.CompletionTime)
	require.Len(t, res.Hosts, 1)
	assert.EqualValues(t, 2, res.Hosts[0].MessagesProcessed)
}

// Scenario 2 (spec §8): depth=3, hosts=1, branch=1 — linear chain down and
// back. The rule-derived total is 2000ns (5 network hops), not the spec
// prose's 2100ns/6-hops; see DESIGN.md's "Resolved ambiguity" entry for why
// the rule-derived value is authoritative here.
func TestRun_Scenario2_LinearDepth(t *testing.T) {
	cfg := baseConfig()
	cfg.Depth = 3
	cfg.Hosts = 1
	cfg.NetDelay = 100

	dist := &sim.Distributions{Service: []float64{500}, Branch: []int{1}}
	rc := sim.NewContext(1, nil)

	res := sim.Run(cfg, dist, rc)

	assert.EqualValues(t, 2000, res.CompletionTime)
}

// Scenario 3 (spec §8): depth=2, hosts=4, branch=4 — wide fan-out. All four
// children are leaves and reduce straight back to host 0, which issued the
// root map.
func TestRun_Scenario3_WideFanOut(t *testing.T) {
	cfg := baseConfig()
	cfg.Depth = 2
	cfg.Hosts = 4
	cfg.NetDelay = 100

	dist := &sim.Distributions{Service: []float64{500}, Branch: []int{4}}
	rc := sim.NewContext(1, nil)

	res := sim.Run(cfg, dist, rc)

	require.Len(t, res.Hosts, 4)
	// Host 0 issued the root map and four children (ids 1..4, landing on
	// hosts 1,2,3,0 per the id-mod-host-count hash), then received exactly
	// four reduces back (fan-in == fan-out, spec's conservation invariant):
	// host 0 processes the root, child 4 and four reduces (6 messages);
	// hosts 1..3 process one child each, 9 messages in all.
	var totalProcessed int64
	for _, h := range res.Hosts {
		totalProcessed += h.MessagesProcessed
	}
	assert.EqualValues(t, 9, totalProcessed)
	assert.EqualValues(t, 6, res.Hosts[0].MessagesProcessed)
	assert.True(t, res.CompletionTime > 0)
}

// Scenario 5 (spec §8): identical seed and config reproduce identical
// completion times and tier counts across independent runs.
func TestRun_Scenario5_DeterministicRoundTrip(t *testing.T) {
	cfg := baseConfig()
	cfg.Depth = 3
	cfg.Hosts = 2
	cfg.NetDelay = 50

	dist := &sim.Distributions{Service: []float64{400, 600}, Branch: []int{2, 3}}

	rc1 := sim.NewContext(7, nil)
	res1 := sim.Run(cfg, dist, rc1)

	rc2 := sim.NewContext(7, nil)
	res2 := sim.Run(cfg, dist, rc2)

	assert.Equal(t, res1.CompletionTime, res2.CompletionTime)
	assert.Equal(t, res1.TierTotals, res2.TierTotals)
	for i := range res1.Hosts {
		assert.InDelta(t, res1.Hosts[i].Utilization, res2.Hosts[i].Utilization, 1e-9)
	}
}

// Scenario 6 (spec §8): runs=3 via RunAll — each run's message-id counters
// and completion flag start fresh, so every run completes independently
// rather than inheriting state from a prior run.
func TestRunAll_Scenario6_CountersResetAcrossRuns(t *testing.T) {
	cfg := baseConfig()
	cfg.Depth = 2
	cfg.Hosts = 2
	cfg.NetDelay = 50
	cfg.Runs = 3

	dist := &sim.Distributions{Service: []float64{500}, Branch: []int{2}}

	results, err := sim.RunAll(cfg, dist, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results {
		require.NotNil(t, res)
		assert.True(t, res.CompletionTime > 0)
	}
}

// The completion invariant (spec §8/§9): the run reports exactly the time
// the root recorded when it observed its last reply — 10ns root hop + 50ns
// service + 10ns reply hop. That the scheduler stops at that same instant is
// checked in engine's TestScheduler_RunUntilStopsExactlyAtStopInstant.
func TestRun_CompletionTimeMatchesScheduledStop(t *testing.T) {
	cfg := baseConfig()
	cfg.Depth = 1
	cfg.Hosts = 1
	cfg.NetDelay = 10

	dist := &sim.Distributions{Service: []float64{50}, Branch: []int{1}}
	rc := sim.NewContext(3, nil)

	res := sim.Run(cfg, dist, rc)

	assert.True(t, rc.Done())
	assert.Equal(t, rc.CompletionTime(), res.CompletionTime)
	assert.EqualValues(t, 70, res.CompletionTime)
}
