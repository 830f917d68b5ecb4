package host

import (
	"github.com/othellosim/desim/internal/memhier"
	"github.com/othellosim/desim/internal/simtime"
)

// Metrics accumulates the per-host counters spec §4.2 requires: messages
// processed, total queue-wait time, busy time, and per-tier fetch counts.
type Metrics struct {
	MessagesProcessed int64
	QueueWaitTotal     simtime.Duration
	BusyTime           simtime.Duration
	TierCounts         [3]int64 // indexed by memhier.Tier
}

func (m *Metrics) recordEnqueueTier(t memhier.Tier) {
	m.TierCounts[t]++
}

func (m *Metrics) recordService(d simtime.Duration) {
	m.BusyTime += d
}

func (m *Metrics) recordDequeue(queueWait simtime.Duration) {
	m.MessagesProcessed++
	m.QueueWaitTotal += queueWait
}

// Utilization is busy-time / completion-time (spec §4.2).
func (m *Metrics) Utilization(completionTime simtime.Duration) float64 {
	if completionTime <= 0 {
		return 0
	}
	return float64(m.BusyTime) / float64(completionTime)
}

// ExpectedAvgQueueSize applies Little's law: (messages processed /
// completion time) * (total queue-wait / messages processed), zero when no
// messages were processed (spec §4.2).
func (m *Metrics) ExpectedAvgQueueSize(completionTime simtime.Duration) float64 {
	if m.MessagesProcessed == 0 || completionTime <= 0 {
		return 0
	}
	arrivalRate := float64(m.MessagesProcessed) / float64(completionTime)
	avgWait := float64(m.QueueWaitTotal) / float64(m.MessagesProcessed)
	return arrivalRate * avgWait
}
