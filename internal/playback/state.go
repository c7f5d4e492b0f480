// Package playback implements the playback state machine of §4.3: pure
// evaluation of the four coordination flags from the latest status
// snapshot and whether the last command was acknowledged.
package playback

import "github.com/tamzrod/etherdream/internal/protocol"

// MinPacketPoints mirrors scheduler.MinPacketPoints; duplicated as an
// untyped constant here to avoid a playback->scheduler import for a
// single number used only in rule 3 (§4.3).
const MinPacketPoints = 150

// Flags are the coordination flags the driver acts on every iteration
// (§3, DeviceState). RateChangePending is NOT recomputed by Update — it
// is set by a successful 'q' ACK and cleared by the driver after sending
// a 'd' frame carrying the rate-change bit (§4.3 rule 4), so it is owned
// by the caller and threaded through Update unchanged.
type Flags struct {
	ClearRequired     bool
	PrepareRequired   bool
	BeginRequired     bool
	RateChangePending bool
}

// Update evaluates rules 1-3 of §4.3 in order against the latest status
// and whether the command that produced it was acknowledged.
// rateChangePending is the previous RateChangePending value, passed
// through untouched — callers set it true on a successful 'q' ACK and
// clear it after shipping the rate-change bit on a 'd' frame (see
// device.Device.applyAck and refillAndSend).
func Update(status protocol.PlaybackStatus, commandAcked bool, rateChangePending bool) Flags {
	clearRequired := status.LightEngineState == protocol.LightEngineEstop ||
		status.PlaybackFlags&protocol.PlaybackFlagUnderflow != 0 ||
		!commandAcked

	prepareRequired := !clearRequired &&
		status.LightEngineState == protocol.LightEngineReady &&
		status.PlaybackState == protocol.PlaybackIdle

	beginRequired := !clearRequired &&
		status.PlaybackState == protocol.PlaybackPrepared &&
		int(status.BufferFullness) >= MinPacketPoints

	return Flags{
		ClearRequired:     clearRequired,
		PrepareRequired:   prepareRequired,
		BeginRequired:     beginRequired,
		RateChangePending: rateChangePending,
	}
}
