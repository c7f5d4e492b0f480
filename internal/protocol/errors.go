package protocol

import "fmt"

// ProtocolErrorKind distinguishes the ways a reply frame can be rejected.
// None of these are recoverable inside the protocol layer (§7).
type ProtocolErrorKind int

const (
	BadAckResponse ProtocolErrorKind = iota
	CommandMismatch
	ShortFrame
	UnknownEnum
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case BadAckResponse:
		return "bad ack response"
	case CommandMismatch:
		return "command mismatch"
	case ShortFrame:
		return "short frame"
	case UnknownEnum:
		return "unknown enum"
	default:
		return "protocol error"
	}
}

// ProtocolError is a hard failure decoding or validating an ACK frame.
type ProtocolError struct {
	Kind   ProtocolErrorKind
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
