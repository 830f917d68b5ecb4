package memhier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/othellosim/desim/config"
)

func TestClassify_ThresholdBoundaries(t *testing.T) {
	cases := []struct {
		name             string
		queueLen         int
		nicBufSize       int
		llcSize          int
		want             Tier
	}{
		{"within nic buffer", 2, 4, 8, Reg},
		{"exactly at nic buffer boundary", 4, 4, 8, Reg},
		{"just past nic buffer", 5, 4, 8, LLC},
		{"exactly at llc boundary", 12, 4, 8, LLC},
		{"just past llc boundary", 13, 4, 8, Mem},
		{"far past llc boundary", 1000, 4, 8, Mem},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.queueLen, tc.nicBufSize, tc.llcSize))
		})
	}
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "Register", Reg.String())
	assert.Equal(t, "LLC", LLC.String())
	assert.Equal(t, "MainMemory", Mem.String())
	assert.Equal(t, "Unknown", Tier(99).String())
}

func TestFetchDelay_PerTier(t *testing.T) {
	cfg := &config.Config{
		RegAccessTime: 1,
		LLCAccessTime: 10,
		MemAccessTime: 100,
	}
	assert.EqualValues(t, 1, FetchDelay(Reg, cfg))
	assert.EqualValues(t, 10, FetchDelay(LLC, cfg))
	assert.EqualValues(t, 100, FetchDelay(Mem, cfg))
}

func TestPlacementDelay_PerNICType(t *testing.T) {
	cfg := &config.Config{
		RegDelay: 2,
		LLCDelay: 20,
		MemDelay: 200,
	}
	assert.EqualValues(t, 2, PlacementDelay(config.NICReg, cfg))
	assert.EqualValues(t, 20, PlacementDelay(config.NICDDIO, cfg))
	assert.EqualValues(t, 200, PlacementDelay(config.NICType("bogus"), cfg))
}
