package device

import "errors"

// Sentinel errors for the Contract and Lifecycle kinds of §7. Transport
// and Protocol kinds are surfaced directly from the transport/protocol
// packages, wrapped with context.
var (
	// ErrCallbackUnderfill is recorded when the callback returns fewer
	// than the requested minimum points.
	ErrCallbackUnderfill = errors.New("device: callback produced fewer than the minimum required points")

	// ErrNotConnected names the "no open transport" condition. No function
	// in this package returns it: run() logs and returns when it finds
	// the transport closed, and transport calls report
	// transport.ErrNotOpen.
	ErrNotConnected = errors.New("device: not connected")

	// ErrOperationCanceled wraps whatever transport error Stop()'s
	// Cancel() produced in the worker's in-flight read/write, recorded
	// by fail() instead of the raw transport error so callers can tell
	// a deliberate Stop() apart from a genuine session failure.
	ErrOperationCanceled = errors.New("device: operation canceled")

	// errAlreadyRunning names the "worker already active" condition. It
	// is not returned anywhere: Start has no error result and a second
	// call while running is a no-op.
	errAlreadyRunning = errors.New("device: already running")
)
