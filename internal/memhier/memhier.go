// Package memhier models the two independent delays that a message's
// physical placement imposes (spec §4.4): the placement delay the switch
// pays moving a message from the NIC toward its resting tier, and the fetch
// delay the host pays pulling a message from that tier once it dequeues it.
package memhier

import (
	"github.com/othellosim/desim/config"
	"github.com/othellosim/desim/internal/simtime"
)

// Tier is one of the three capacity tiers a message's resting place can
// classify into, based on host queue depth at enqueue time.
type Tier int8

const (
	Reg Tier = iota
	LLC
	Mem
)

func (t Tier) String() string {
	switch t {
	case Reg:
		return "Register"
	case LLC:
		return "LLC"
	case Mem:
		return "MainMemory"
	default:
		return "Unknown"
	}
}

// Classify assigns a tier to a message based on the host queue length
// immediately after it was enqueued (spec §4.2). Thresholds are strictly
// increasing: queueLen <= nicBufSize is Reg, up to nicBufSize+llcSize is
// LLC, beyond that is Mem.
func Classify(queueLen, nicBufSize, llcSize int) Tier {
	switch {
	case queueLen <= nicBufSize:
		return Reg
	case queueLen <= nicBufSize+llcSize:
		return LLC
	default:
		return Mem
	}
}

// FetchDelay returns the host-side latency of pulling a message resting in
// tier t up to the CPU.
func FetchDelay(t Tier, cfg *config.Config) simtime.Duration {
	switch t {
	case Reg:
		return simtime.Duration(cfg.RegAccessTime)
	case LLC:
		return simtime.Duration(cfg.LLCAccessTime)
	default:
		return simtime.Duration(cfg.MemAccessTime)
	}
}

// PlacementDelay returns the switch-side latency of moving a message from
// the NIC to wherever the configured NIC type lands it, independent of the
// queue-depth-driven fetch delay above (spec §4.4: "the two models are
// orthogonal").
func PlacementDelay(nic config.NICType, cfg *config.Config) simtime.Duration {
	switch nic {
	case config.NICReg:
		return simtime.Duration(cfg.RegDelay)
	case config.NICDDIO:
		return simtime.Duration(cfg.LLCDelay)
	default:
		return simtime.Duration(cfg.MemDelay)
	}
}
