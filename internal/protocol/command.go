package protocol

import (
	"errors"
	"math"

	"github.com/tamzrod/etherdream/internal/point"
)

// ErrSerializationEmpty is returned by SetData when asked to serialize
// zero points (§7, Contract errors).
var ErrSerializationEmpty = errors.New("protocol: cannot serialize an empty data frame")

// Opcodes, one byte each, as sent on the wire (§6.1).
const (
	OpPing    byte = '?'
	OpPrepare byte = 'p'
	OpBegin   byte = 'b'
	OpQueue   byte = 'q'
	OpData    byte = 'd'
	OpStop    byte = 's'
	OpClear   byte = 'c'
)

// PointWireSize is the size in bytes of one point on the wire (§4.2).
const PointWireSize = 18

const (
	coordScale    = 32767.0
	channelScale  = 65535.0
	rateChangeBit = uint16(0x8000)
)

// EncodeCoordinate clamps to [-1,1], scales by 32767, and rounds
// half-away-from-zero into a signed 16-bit word (§4.2, property 2). The
// negative bound -1 (and anything below it) encodes to -32768, the int16
// minimum.
func EncodeCoordinate(v float64) int16 {
	v = clamp(v, -1, 1)
	if v == -1 {
		return math.MinInt16
	}
	scaled := v * coordScale
	rounded := roundHalfAwayFromZero(scaled)
	if rounded > 32767 {
		rounded = 32767
	}
	if rounded < -32768 {
		rounded = -32768
	}
	return int16(rounded)
}

// EncodeChannel clamps to [0,1], scales by 65535, and rounds half-up into
// an unsigned 16-bit word (§4.2, property 2).
func EncodeChannel(v float64) uint16 {
	v = clamp(v, 0, 1)
	scaled := math.Floor(v*channelScale + 0.5)
	if scaled > 65535 {
		scaled = 65535
	}
	if scaled < 0 {
		scaled = 0
	}
	return uint16(scaled)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

// Command stages one outgoing frame. It is cleared after every send (§4.2:
// "opcode == 0 indicates no pending frame").
type Command struct {
	buf    []byte
	opcode byte
}

// Reset clears the buffer, leaving its capacity intact for reuse.
func (c *Command) Reset() {
	c.buf = c.buf[:0]
	c.opcode = 0
}

// Bytes returns the staged frame. Only valid between a Set*/Build* call
// and the next Reset.
func (c *Command) Bytes() []byte { return c.buf }

// Opcode reports the pending frame's opcode, or 0 if none is staged.
func (c *Command) Opcode() byte { return c.opcode }

// Ready reports whether a frame is staged and well-formed (§3:
// "bytes.len() >= 1 and bytes[0] == opcode").
func (c *Command) Ready() bool {
	return len(c.buf) >= 1 && c.buf[0] == c.opcode
}

func (c *Command) singleByte(op byte) {
	c.buf = append(c.buf[:0], op)
	c.opcode = op
}

// SetPing stages '?'.
func (c *Command) SetPing() { c.singleByte(OpPing) }

// SetPrepare stages 'p'.
func (c *Command) SetPrepare() { c.singleByte(OpPrepare) }

// SetStop stages 's'.
func (c *Command) SetStop() { c.singleByte(OpStop) }

// SetClear stages 'c'.
func (c *Command) SetClear() { c.singleByte(OpClear) }

// SetBegin stages 'b' | flags(u16=0) | pointRate(u32) — 7 bytes.
func (c *Command) SetBegin(pointRate uint32) {
	c.buf = append(c.buf[:0], OpBegin, 0, 0, 0, 0, 0, 0)
	putUint32LE(c.buf[3:7], pointRate)
	c.opcode = OpBegin
}

// SetQueueRate stages 'q' | pointRate(u32) — 5 bytes.
func (c *Command) SetQueueRate(pointRate uint32) {
	c.buf = append(c.buf[:0], OpQueue, 0, 0, 0, 0)
	putUint32LE(c.buf[1:5], pointRate)
	c.opcode = OpQueue
}

// SetData stages 'd' | count(u16) | point[count] (§4.2/§6.1). rateChange
// sets the 0x8000 control bit on the first point only (property 3).
func (c *Command) SetData(points []point.LaserPoint, rateChange bool) error {
	if len(points) == 0 {
		return ErrSerializationEmpty
	}
	if len(points) > math.MaxUint16 {
		return &ProtocolError{Kind: ShortFrame, Detail: "data frame exceeds u16 count"}
	}

	size := 1 + 2 + len(points)*PointWireSize
	c.buf = growTo(c.buf[:0], size)
	c.buf[0] = OpData
	putUint16LE(c.buf[1:3], uint16(len(points)))
	c.opcode = OpData

	off := 3
	for i, p := range points {
		control := uint16(0)
		if rateChange && i == 0 {
			control = rateChangeBit
		}
		putUint16LE(c.buf[off:off+2], control)
		putInt16LE(c.buf[off+2:off+4], EncodeCoordinate(p.X))
		putInt16LE(c.buf[off+4:off+6], EncodeCoordinate(p.Y))
		putUint16LE(c.buf[off+6:off+8], EncodeChannel(p.R))
		putUint16LE(c.buf[off+8:off+10], EncodeChannel(p.G))
		putUint16LE(c.buf[off+10:off+12], EncodeChannel(p.B))
		putUint16LE(c.buf[off+12:off+14], EncodeChannel(p.I))
		putUint16LE(c.buf[off+14:off+16], EncodeChannel(p.U1))
		putUint16LE(c.buf[off+16:off+18], EncodeChannel(p.U2))
		off += PointWireSize
	}
	return nil
}

func growTo(buf []byte, n int) []byte {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]byte, n)
}
