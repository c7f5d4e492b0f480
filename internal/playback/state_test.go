package playback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/etherdream/internal/protocol"
)

func readyIdle() protocol.PlaybackStatus {
	return protocol.PlaybackStatus{
		LightEngineState: protocol.LightEngineReady,
		PlaybackState:    protocol.PlaybackIdle,
	}
}

// property 4: applying Update twice with the same inputs yields the same
// flags (no hidden mutable state).
func TestUpdate_Idempotent(t *testing.T) {
	status := readyIdle()
	a := Update(status, true, false)
	b := Update(status, true, false)
	require.Equal(t, a, b)
}

// property 5: estop or underflow forces ClearRequired regardless of what
// else is true, and suppresses prepare/begin.
func TestUpdate_ClearTakesPrecedence(t *testing.T) {
	status := protocol.PlaybackStatus{
		LightEngineState: protocol.LightEngineEstop,
		PlaybackState:    protocol.PlaybackPrepared,
		BufferFullness:   1000,
	}
	flags := Update(status, true, false)
	require.True(t, flags.ClearRequired)
	require.False(t, flags.PrepareRequired)
	require.False(t, flags.BeginRequired)
}

func TestUpdate_UnderflowForcesClear(t *testing.T) {
	status := protocol.PlaybackStatus{
		LightEngineState: protocol.LightEngineReady,
		PlaybackState:    protocol.PlaybackPlaying,
		PlaybackFlags:    protocol.PlaybackFlagUnderflow,
	}
	flags := Update(status, true, false)
	require.True(t, flags.ClearRequired)
}

func TestUpdate_UnackedCommandForcesClear(t *testing.T) {
	flags := Update(readyIdle(), false, false)
	require.True(t, flags.ClearRequired)
}

func TestUpdate_PrepareRequiredWhenReadyAndIdle(t *testing.T) {
	flags := Update(readyIdle(), true, false)
	require.False(t, flags.ClearRequired)
	require.True(t, flags.PrepareRequired)
	require.False(t, flags.BeginRequired)
}

func TestUpdate_BeginRequiredWhenPreparedAndBufferFull(t *testing.T) {
	status := protocol.PlaybackStatus{
		LightEngineState: protocol.LightEngineReady,
		PlaybackState:    protocol.PlaybackPrepared,
		BufferFullness:   MinPacketPoints,
	}
	flags := Update(status, true, false)
	require.False(t, flags.ClearRequired)
	require.False(t, flags.PrepareRequired)
	require.True(t, flags.BeginRequired)
}

func TestUpdate_BeginNotRequiredBelowMinPacketPoints(t *testing.T) {
	status := protocol.PlaybackStatus{
		LightEngineState: protocol.LightEngineReady,
		PlaybackState:    protocol.PlaybackPrepared,
		BufferFullness:   MinPacketPoints - 1,
	}
	flags := Update(status, true, false)
	require.False(t, flags.BeginRequired)
}

func TestUpdate_RateChangePendingPassesThroughUnchanged(t *testing.T) {
	flagsTrue := Update(readyIdle(), true, true)
	require.True(t, flagsTrue.RateChangePending)

	flagsFalse := Update(readyIdle(), true, false)
	require.False(t, flagsFalse.RateChangePending)
}

func TestUpdate_PlayingSteadyState_NoFlagsSet(t *testing.T) {
	status := protocol.PlaybackStatus{
		LightEngineState: protocol.LightEngineReady,
		PlaybackState:    protocol.PlaybackPlaying,
		BufferFullness:   900,
	}
	flags := Update(status, true, false)
	require.False(t, flags.ClearRequired)
	require.False(t, flags.PrepareRequired)
	require.False(t, flags.BeginRequired)
}
