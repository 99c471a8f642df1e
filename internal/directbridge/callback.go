package directbridge

import "github.com/sadewadee/bridged/internal/wire"

// PushResponse pushes a complete single-frame response for requestID.
// This is the direct-callback analogue of encoding and writing a single
// response frame over a socket, except the payload goes straight into
// the registry instead of onto a wire.
func (reg *Registry) PushResponse(requestID uint64, resp *wire.ResponseDescriptor, body []byte) error {
	payload, err := wire.EncodeResponseSinglePayload(resp, body)
	if err != nil {
		return err
	}
	reg.PushResponseFrame(requestID, payload)
	return nil
}

// PushResponseStart pushes the header portion of a streaming response.
func (reg *Registry) PushResponseStart(requestID uint64, resp *wire.ResponseDescriptor) error {
	payload, err := wire.EncodeResponseStartPayload(resp)
	if err != nil {
		return err
	}
	reg.PushResponseFrame(requestID, payload)
	return nil
}

// PushResponseChunk pushes one response body chunk.
func (reg *Registry) PushResponseChunk(requestID uint64, chunk []byte) {
	reg.PushResponseFrame(requestID, wire.EncodeResponseChunkPayload(chunk))
}

// PushResponseEnd pushes the terminal frame of a streaming response.
func (reg *Registry) PushResponseEnd(requestID uint64) {
	reg.PushResponseFrame(requestID, wire.EncodeResponseEndPayload())
}

// PushTunnelChunk pushes one tunnel byte-chunk from the host to the
// client side of an active tunnel.
func (reg *Registry) PushTunnelChunk(requestID uint64, chunk []byte) {
	reg.PushResponseFrame(requestID, wire.EncodeTunnelChunkPayload(chunk))
}

// PushTunnelClose pushes the terminal frame for a tunnel closed from the
// host side.
func (reg *Registry) PushTunnelClose(requestID uint64) {
	reg.PushResponseFrame(requestID, wire.EncodeTunnelClosePayload())
}
