package device

import (
	"time"

	"github.com/tamzrod/etherdream/internal/point"
)

// PointFillRequest is the refill order handed to the point generator
// callback each iteration (§3). The out slice passed alongside it is the
// same slice of LaserPoint across calls (pre-reserved to PointBufferCapacity) — the driver clears
// it before invoking the callback and reads its length afterward.
type PointFillRequest struct {
	MinimumPointsRequired         int
	MaximumPointsRequired         int // 0 = unbounded
	EstimatedFirstPointRenderTime time.Time
	CurrentPointIndex             uint64
}

// RequestPointsFunc generates new samples on demand. Implementations
// MUST:
//   - append at least req.MinimumPointsRequired points to *out
//   - append at most req.MaximumPointsRequired points when it is non-zero
//   - only append (never call a reset/reserve/grow operation on *out)
//   - be non-blocking and allocation-free on the hot path
//
// The number of points produced is *out's length after the call returns
// (§6.3).
type RequestPointsFunc func(req PointFillRequest, out *[]point.LaserPoint)

// PointBufferCapacity is the pre-reserved capacity of the buffer passed
// to RequestPointsFunc, large enough that no plausible single refill
// needs the callback to grow it (§4.5 contract, §9 design notes).
const PointBufferCapacity = 30000
