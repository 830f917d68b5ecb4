package runctx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othellosim/desim/internal/simtime"
)

func TestNextMapID_MonotonicAndNeverReused(t *testing.T) {
	c := New(1)
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		id := c.NextMapID()
		require.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestNextReduceID_IndependentSequenceFromMapID(t *testing.T) {
	c := New(1)
	assert.EqualValues(t, 0, c.NextMapID())
	assert.EqualValues(t, 0, c.NextReduceID())
	assert.EqualValues(t, 1, c.NextMapID())
	assert.EqualValues(t, 1, c.NextReduceID())
}

func TestNew_SameSeedProducesSameRNGStream(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Rand().Int64(), b.Rand().Int64())
	}
}

func TestNew_DifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	var same int
	for i := 0; i < 10; i++ {
		if a.Rand().Int64() == b.Rand().Int64() {
			same++
		}
	}
	assert.Less(t, same, 10)
}

func TestComplete_IsIdempotentAndRecordsFirstTimeOnly(t *testing.T) {
	c := New(1)
	assert.False(t, c.Done())

	c.Complete(simtime.Time(100))
	assert.True(t, c.Done())
	assert.Equal(t, simtime.Time(100), c.CompletionTime())

	// A second call must not overwrite the recorded completion time.
	c.Complete(simtime.Time(500))
	assert.Equal(t, simtime.Time(100), c.CompletionTime())
}

func TestComplete_ConcurrentCallsRecordExactlyOneWinner(t *testing.T) {
	c := New(1)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		t := simtime.Time(i)
		go func() {
			defer wg.Done()
			c.Complete(t)
		}()
	}
	wg.Wait()

	assert.True(t, c.Done())
	// Whichever goroutine won, the recorded time must be one of the
	// attempted values 0..49.
	assert.GreaterOrEqual(t, int64(c.CompletionTime()), int64(0))
	assert.Less(t, int64(c.CompletionTime()), int64(50))
}
