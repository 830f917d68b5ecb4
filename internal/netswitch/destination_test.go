package netswitch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othellosim/desim/internal/message"
	"github.com/othellosim/desim/internal/netswitch"
	"github.com/othellosim/desim/internal/simtime"
)

func TestDestination_MapUsesIDModuloHostCount(t *testing.T) {
	// Scenario 3 (spec §8): four hosts, a sequence of map ids dispatched in
	// order 1, 2, 3, 0 — the deterministic id-mod-host-count hash, not a
	// "real" load-balancing hash (spec §9).
	hostCount := 4
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	want := []int{1, 2, 3, 0, 1, 2, 3, 0}

	for i, id := range ids {
		m := message.NewMap(id, 3, 0, false, 0, 0)
		dst, ok := netswitch.Destination(m, hostCount)
		require.True(t, ok, "id=%d", id)
		assert.Equal(t, want[i], dst, "id=%d", id)
	}
}

func TestDestination_ReduceUsesTargetHostDirectly(t *testing.T) {
	r := message.NewReduce(1, 2, 99)
	dst, ok := netswitch.Destination(r, 4)
	require.True(t, ok)
	assert.Equal(t, 2, dst)
}

func TestDestination_UnknownEnvelopeIsLoggedAndDropped(t *testing.T) {
	// Spec §7's error taxonomy treats an unrecognized protocol variant as
	// "logged; dropped", not fatal — matching host.go's handling of the
	// same error class. Destination reports ok=false rather than panicking
	// so the switch's dispatch loop can log and continue.
	_, ok := netswitch.Destination(unknownEnvelope{}, 4)
	assert.False(t, ok)
}

type unknownEnvelope struct{}

func (unknownEnvelope) Kind() message.Kind                   { return message.Kind(0) }
func (unknownEnvelope) ID() int64                            { return 0 }
func (unknownEnvelope) EnqueueTime() simtime.Time            { return 0 }
func (unknownEnvelope) SetEnqueueTime(simtime.Time)          {}
func (unknownEnvelope) ShortTag() string                     { return "" }
