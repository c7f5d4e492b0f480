package protocol

// Device Status Block layout constants (§6.1). These values are the wire
// protocol and MUST NOT be made configurable.

const (
	// AckSize is the fixed length of every reply frame: response(1) +
	// command(1) + status(20).
	AckSize = 22

	statusOffset = 2 // response(1) + command(1)
)

// LightEngineState is the laser-safety state reported by the DAC.
type LightEngineState uint8

const (
	LightEngineReady LightEngineState = iota
	LightEngineWarmup
	LightEngineCooldown
	LightEngineEstop
)

func (s LightEngineState) String() string {
	switch s {
	case LightEngineReady:
		return "ready"
	case LightEngineWarmup:
		return "warmup"
	case LightEngineCooldown:
		return "cooldown"
	case LightEngineEstop:
		return "estop"
	default:
		return "unknown"
	}
}

func (s LightEngineState) valid() bool {
	return s <= LightEngineEstop
}

// PlaybackState is the DAC-reported playback state.
type PlaybackState uint8

const (
	PlaybackIdle PlaybackState = iota
	PlaybackPrepared
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackIdle:
		return "idle"
	case PlaybackPrepared:
		return "prepared"
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "unknown"
	}
}

func (s PlaybackState) valid() bool {
	return s <= PlaybackPaused
}

// PlaybackFlag bits within PlaybackStatus.PlaybackFlags.
const (
	// PlaybackFlagUnderflow indicates the FIFO ran dry during playback.
	PlaybackFlagUnderflow uint16 = 0x04
)

// PlaybackStatus is the last-known snapshot of DAC state, refreshed
// wholesale on every ACK (§3).
type PlaybackStatus struct {
	Protocol         uint8
	LightEngineState LightEngineState
	PlaybackState    PlaybackState
	Source           uint8
	LightEngineFlags uint16
	PlaybackFlags    uint16
	SourceFlags      uint16
	BufferFullness   uint16
	PointRate        uint32
	PointCount       uint32
}

// decodeStatus parses the 20-byte status tail at src[statusOffset:].
// src must already be validated to be AckSize bytes long.
func decodeStatus(src []byte) (PlaybackStatus, error) {
	b := src[statusOffset:]

	les := LightEngineState(b[1])
	if !les.valid() {
		return PlaybackStatus{}, &ProtocolError{Kind: UnknownEnum, Detail: "lightEngineState"}
	}
	ps := PlaybackState(b[2])
	if !ps.valid() {
		return PlaybackStatus{}, &ProtocolError{Kind: UnknownEnum, Detail: "playbackState"}
	}

	return PlaybackStatus{
		Protocol:         b[0],
		LightEngineState: les,
		PlaybackState:    ps,
		Source:           b[3],
		LightEngineFlags: getUint16LE(b[4:6]),
		PlaybackFlags:    getUint16LE(b[6:8]),
		SourceFlags:      getUint16LE(b[8:10]),
		BufferFullness:   getUint16LE(b[10:12]),
		PointRate:        getUint32LE(b[12:16]),
		PointCount:       getUint32LE(b[16:20]),
	}, nil
}
