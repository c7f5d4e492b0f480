package protocol

// ResponseOK is the response byte the DAC sends on every successful
// command (§6.1): ASCII 'a'.
const ResponseOK byte = 'a'

// AckFrame is one decoded 22-byte reply.
type AckFrame struct {
	Response byte
	Command  byte
	Status   PlaybackStatus
}

// DecodeAck parses the first AckSize bytes of frame into an AckFrame;
// bytes past AckSize are ignored. It rejects a frame shorter than AckSize
// and validates the enum fields inside the status tail; it does NOT
// validate Response or Command against an expectation — that is the
// driver's job (§4.3's commandAcked derivation), since a decoder has no
// notion of "the command that was just sent".
func DecodeAck(frame []byte) (AckFrame, error) {
	if len(frame) < AckSize {
		return AckFrame{}, &ProtocolError{Kind: ShortFrame}
	}

	status, err := decodeStatus(frame)
	if err != nil {
		return AckFrame{}, err
	}

	return AckFrame{
		Response: frame[0],
		Command:  frame[1],
		Status:   status,
	}, nil
}

// Acked reports whether this frame is a successful ACK of the given
// outgoing opcode: response must be 'a' and command must echo back.
func (f AckFrame) Acked(expected byte) bool {
	return f.Response == ResponseOK && f.Command == expected
}
