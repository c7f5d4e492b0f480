package transport

import "errors"

// Sentinel transport errors (§7). Wrap these with fmt.Errorf("...: %w", ...)
// for context; callers compare with errors.Is.
var (
	ErrConnectRefused   = errors.New("transport: connection refused")
	ErrTimedOut         = errors.New("transport: timed out")
	ErrConnectionClosed = errors.New("transport: connection closed")
	ErrCancelled        = errors.New("transport: operation cancelled")
	ErrNotOpen          = errors.New("transport: not connected")
	ErrNoEndpoints      = errors.New("transport: no endpoints given")
)
