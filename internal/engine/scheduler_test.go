package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othellosim/desim/internal/simtime"
)

func TestScheduler_OrdersByTimeThenFIFO(t *testing.T) {
	sched := NewScheduler()
	var order []string

	sched.Schedule(100, func() { order = append(order, "late") })
	sched.Schedule(0, func() { order = append(order, "first") })
	sched.Schedule(0, func() { order = append(order, "second") })
	sched.Schedule(50, func() { order = append(order, "middle") })

	sched.Run()

	assert.Equal(t, []string{"first", "second", "middle", "late"}, order)
}

func TestScheduler_NowTracksLastPoppedEvent(t *testing.T) {
	sched := NewScheduler()
	require.Equal(t, simtime.Zero, sched.Now())

	sched.Schedule(10, func() {})
	sched.Schedule(20, func() {})
	sched.Run()

	assert.Equal(t, simtime.Time(20), sched.Now())
	assert.False(t, sched.Pending())
}

func TestScheduler_RunUntilStopsExactlyAtStopInstant(t *testing.T) {
	sched := NewScheduler()

	// A periodic actor that would otherwise keep ticking well past the
	// instant a one-shot "completion" event fires.
	var ticks int
	var tick func()
	tick = func() {
		ticks++
		sched.Schedule(10, tick)
	}
	sched.Schedule(10, tick)

	completed := false
	sched.Schedule(25, func() { completed = true })

	sched.RunUntil(func() bool { return completed })

	// The completion event fires at t=25, between the tick at t=20 and the
	// tick at t=30 — RunUntil must stop the instant completed flips, not
	// let the scheduler run on to the next queued tick.
	assert.Equal(t, simtime.Time(25), sched.Now())
	assert.True(t, completed)
	assert.Equal(t, 2, ticks)
}

func TestActor_SleepSuspendsUntilTimeAdvances(t *testing.T) {
	sched := NewScheduler()
	var woke simtime.Time

	Spawn(sched, func(a *Actor) {
		a.Sleep(42)
		woke = a.Now()
	})
	sched.Run()

	assert.Equal(t, simtime.Time(42), woke)
}

func TestChan_PutWakesWaitingReceiver(t *testing.T) {
	sched := NewScheduler()
	ch := NewChan[int]()
	var got int

	Spawn(sched, func(a *Actor) {
		got = ch.Receive(a)
	})
	ch.Put(sched, 7)
	sched.Run()

	assert.Equal(t, 7, got)
}

func TestChan_PreservesFIFOOrderAcrossPuts(t *testing.T) {
	sched := NewScheduler()
	ch := NewChan[int]()
	var got []int

	Spawn(sched, func(a *Actor) {
		for i := 0; i < 3; i++ {
			got = append(got, ch.Receive(a))
		}
	})
	ch.Put(sched, 1)
	ch.Put(sched, 2)
	ch.Put(sched, 3)
	sched.Run()

	assert.Equal(t, []int{1, 2, 3}, got)
}
