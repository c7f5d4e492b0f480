package device

import (
	"sync"
	"sync/atomic"

	"github.com/tamzrod/etherdream/internal/point"
)

// base owns the worker goroutine, the atomic running/latency state, and
// the reusable point buffer (§2 "Device base", §3 DeviceState). It
// mirrors original_source's LaserDeviceBase: a thread (here, goroutine)
// owned by the base and joined on stop, plus the two fields ("running",
// "latencyMs") that are safe to touch from the owner thread while the
// worker is active.
type base struct {
	running atomic.Bool
	latency atomic.Int64 // milliseconds

	wg sync.WaitGroup

	callbackMu sync.Mutex
	callback   RequestPointsFunc

	pointsToSend []point.LaserPoint
}

const defaultLatencyMs = 50

func (b *base) init() {
	b.pointsToSend = make([]point.LaserPoint, 0, PointBufferCapacity)
	b.latency.Store(defaultLatencyMs)
}

// SetRequestPointsCallback installs the generator. Calling this while the
// worker runs is undefined behavior per §6.2; this implementation guards
// it with a mutex so a racing call is at least memory-safe, but callers
// should still only call it while stopped.
func (b *base) SetRequestPointsCallback(cb RequestPointsFunc) {
	b.callbackMu.Lock()
	b.callback = cb
	b.callbackMu.Unlock()
}

func (b *base) getCallback() RequestPointsFunc {
	b.callbackMu.Lock()
	defer b.callbackMu.Unlock()
	return b.callback
}

// SetLatency clamps to >= 1ms (§6.2).
func (b *base) SetLatency(ms int64) {
	if ms < 1 {
		ms = 1
	}
	b.latency.Store(ms)
}

// GetLatency returns the current latency budget in milliseconds.
func (b *base) GetLatency() int64 {
	return b.latency.Load()
}

// IsRunning reports whether the worker goroutine is active.
func (b *base) IsRunning() bool {
	return b.running.Load()
}

// requestPoints clears the reusable buffer, invokes the callback, and
// reports the Contract violation (§7 CallbackUnderfill) if it underfilled.
// Returns false if no callback is installed (§2: "false if no callback").
func (b *base) requestPoints(req PointFillRequest) (bool, error) {
	cb := b.getCallback()
	if cb == nil {
		return false, nil
	}

	b.pointsToSend = b.pointsToSend[:0]
	cb(req, &b.pointsToSend)

	if len(b.pointsToSend) < req.MinimumPointsRequired {
		return true, ErrCallbackUnderfill
	}
	if req.MaximumPointsRequired > 0 && len(b.pointsToSend) > req.MaximumPointsRequired {
		b.pointsToSend = b.pointsToSend[:req.MaximumPointsRequired]
	}
	return true, nil
}
