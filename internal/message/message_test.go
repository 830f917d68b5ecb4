package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/othellosim/desim/internal/message"
	"github.com/othellosim/desim/internal/simtime"
)

func TestMap_SatisfiesEnvelope(t *testing.T) {
	m := message.NewMap(7, 3, 0, false, 2, -1)

	var env message.Envelope = m
	assert.Equal(t, message.KindMap, env.Kind())
	assert.EqualValues(t, 7, env.ID())
	assert.NotEmpty(t, env.ShortTag())
}

func TestReduce_SatisfiesEnvelope(t *testing.T) {
	r := message.NewReduce(9, 1, 7)

	var env message.Envelope = r
	assert.Equal(t, message.KindReduce, env.Kind())
	assert.EqualValues(t, 9, env.ID())
	assert.NotEmpty(t, env.ShortTag())
}

func TestMap_IsLeafAtMaxDepthBoundary(t *testing.T) {
	cases := []struct {
		name     string
		curDepth int
		maxDepth int
		wantLeaf bool
	}{
		{"root, deep tree", 0, 3, false},
		{"mid tree", 1, 3, false},
		{"last expandable level", 2, 3, true},
		{"single-level tree", 0, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := message.NewMap(1, tc.maxDepth, tc.curDepth, true, 0, 0)
			assert.Equal(t, tc.wantLeaf, m.IsLeaf())
		})
	}
}

func TestEnvelope_EnqueueTimeRoundTrips(t *testing.T) {
	m := message.NewMap(1, 1, 0, false, 0, 0)
	m.SetEnqueueTime(simtime.Time(123))
	assert.Equal(t, simtime.Time(123), m.EnqueueTime())

	r := message.NewReduce(1, 0, 0)
	r.SetEnqueueTime(simtime.Time(456))
	assert.Equal(t, simtime.Time(456), r.EnqueueTime())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "map", message.KindMap.String())
	assert.Equal(t, "reduce", message.KindReduce.String())
	assert.Equal(t, "unknown", message.Kind(99).String())
}
