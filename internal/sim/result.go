package sim

import "github.com/othellosim/desim/internal/simtime"

// HostResult is one host's final counters (spec §4.2 "metrics on demand").
type HostResult struct {
	HostID               int
	MessagesProcessed    int64
	Utilization          float64
	ExpectedAvgQueueSize float64
	TierCounts           [3]int64
}

// Result is everything one simulation run produced.
type Result struct {
	RunID          string
	CompletionTime simtime.Time
	Hosts          []HostResult
	AvgQSamples    []Sample
	AllQSamples    []int
	TierTotals     [3]int64
}
