package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// S5: status{pointRate=30000, bufferFullness=600}, latencyMs=50, no
// elapsed time since lastReceiveTime.
func TestScenario_S5_RefillSizing(t *testing.T) {
	now := time.Now()

	got := CalculateMinimumPoints(50, 30000, 600)
	require.Equal(t, 1156, got)

	freq := GetFillRequest(600, 30000, 50, now, now)
	require.Equal(t, 1156, freq.MinimumPointsRequired)
	require.Equal(t, 1199, freq.MaximumPointsRequired)
}

// property 7: the fullness estimate never leaves [0, FIFOCapacity].
func TestEstimateBufferFullness_StaysInBounds(t *testing.T) {
	base := time.Now()

	cases := []struct {
		lastFullness uint16
		pointRate    uint32
		elapsed      time.Duration
	}{
		{0, 30000, 0},
		{1799, 30000, 0},
		{1799, 30000, 10 * time.Second}, // fully drained and then some
		{100, 1, time.Millisecond},
		{1799, 0, time.Second}, // unknown rate: passthrough
	}

	for _, c := range cases {
		v := EstimateBufferFullness(c.lastFullness, c.pointRate, base, base.Add(c.elapsed))
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, float64(FIFOCapacity))
	}
}

func TestEstimateBufferFullness_ZeroLastReceiveTimePassesThrough(t *testing.T) {
	v := EstimateBufferFullness(500, 30000, time.Time{}, time.Now())
	require.Equal(t, 500.0, v)
}

func TestEstimateBufferFullness_NegativeElapsedClampedToZero(t *testing.T) {
	now := time.Now()
	before := now.Add(time.Second)
	v := EstimateBufferFullness(500, 30000, before, now)
	require.Equal(t, 500.0, v)
}

// property 6: raising latency never decreases the minimum point
// requirement, all else held equal.
func TestCalculateMinimumPoints_MonotonicInLatency(t *testing.T) {
	prev := CalculateMinimumPoints(1, 30000, 600)
	for _, latency := range []int64{5, 10, 25, 50, 100, 200} {
		cur := CalculateMinimumPoints(latency, 30000, 600)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestCalculateMinimumPoints_NeverNegative(t *testing.T) {
	got := CalculateMinimumPoints(1, 30000, float64(FIFOCapacity))
	require.Equal(t, 0, got)
}

func TestGetFillRequest_MinNeverExceedsMax(t *testing.T) {
	now := time.Now()
	for _, fullness := range []uint16{0, 100, 600, 1799} {
		freq := GetFillRequest(fullness, 30000, 500, now, now)
		require.LessOrEqual(t, freq.MinimumPointsRequired, freq.MaximumPointsRequired)
	}
}

// property 8: the computed sleep never exceeds MaxSleep and is never
// negative.
func TestComputeSleepDurationMS_Bounded(t *testing.T) {
	now := time.Now()

	cases := []struct {
		latencyMs    int64
		pointRate    uint32
		lastFullness uint16
	}{
		{50, 30000, 0},
		{50, 30000, 1799},
		{1, 1, 0},
		{500, 30000, 600},
		{0, 30000, 600},  // latency disabled
		{50, 0, 600},     // rate unknown
	}

	for _, c := range cases {
		d := ComputeSleepDurationMS(c.latencyMs, c.pointRate, c.lastFullness, now, now)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, MaxSleep)
	}
}

func TestComputeSleepDurationMS_ZeroWhenLatencyOrRateMissing(t *testing.T) {
	now := time.Now()
	require.Equal(t, time.Duration(0), ComputeSleepDurationMS(0, 30000, 600, now, now))
	require.Equal(t, time.Duration(0), ComputeSleepDurationMS(50, 0, 600, now, now))
}

func TestPointsToMillisAndBack_RoundTripApprox(t *testing.T) {
	d := pointsToMillis(300, 30000)
	require.InDelta(t, 10*time.Millisecond, d, float64(time.Millisecond))

	p := millisToPoints(10, 30000)
	require.Equal(t, 300, p)
}

func TestMillisToPoints_ZeroRate(t *testing.T) {
	require.Equal(t, 0, millisToPoints(100, 0))
}
