package wire

import (
	"encoding/binary"
	"io"
)

// EncodeTunnelChunk writes one tunnel byte-chunk frame.
func EncodeTunnelChunk(w io.Writer, chunk []byte) error {
	return WriteChunkFrame(w, TypeTunnelChunk, chunk)
}

// EncodeTunnelChunkPayload builds a tunnel-chunk payload without a length
// prefix, for the in-process direct-callback transport.
func EncodeTunnelChunkPayload(chunk []byte) []byte {
	payload := make([]byte, 2+4+len(chunk))
	payload[0] = ProtocolVersion
	payload[1] = byte(TypeTunnelChunk)
	binary.BigEndian.PutUint32(payload[2:6], uint32(len(chunk)))
	copy(payload[6:], chunk)
	return payload
}

// EncodeTunnelClose writes the terminal tunnel frame.
func EncodeTunnelClose(w io.Writer) error {
	return WriteEmptyFrame(w, TypeTunnelClose)
}

// EncodeTunnelClosePayload builds a tunnel-close payload without a length
// prefix, for the in-process direct-callback transport.
func EncodeTunnelClosePayload() []byte {
	return []byte{ProtocolVersion, byte(TypeTunnelClose)}
}

// DecodeTunnelChunk decodes a tunnel chunk frame.
func DecodeTunnelChunk(typ FrameType, body []byte) ([]byte, error) {
	if typ != TypeTunnelChunk {
		return nil, ErrUnexpectedFrameType
	}
	return DecodeChunkBody(body)
}

// DecodeTunnelClose validates a tunnel-close frame's empty body.
func DecodeTunnelClose(typ FrameType, body []byte) error {
	if typ != TypeTunnelClose {
		return ErrUnexpectedFrameType
	}
	return DecodeEmptyBody(body)
}
