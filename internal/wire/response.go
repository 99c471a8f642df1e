package wire

import (
	"encoding/binary"
	"io"
)

// ResponseDescriptor carries an HTTP status and ordered header list back
// from the bridge. Body (single-frame form) travels alongside it.
type ResponseDescriptor struct {
	Status  uint16
	Headers []HeaderField
}

func (resp *ResponseDescriptor) encodeFields(w *Writer) error {
	w.PutU16(resp.Status)
	return writeHeadersTokenized(w, resp.Headers)
}

func decodeResponseFields(r *Reader, tokenized bool) (*ResponseDescriptor, error) {
	status, err := r.GetU16()
	if err != nil {
		return nil, err
	}
	var headers []HeaderField
	if tokenized {
		headers, err = readHeadersTokenized(r)
	} else {
		headers, err = readHeadersLiteral(r)
	}
	if err != nil {
		return nil, err
	}
	return &ResponseDescriptor{Status: status, Headers: headers}, nil
}

// EncodeResponseSingle writes a complete response as one frame.
func EncodeResponseSingle(w io.Writer, resp *ResponseDescriptor, body []byte) error {
	payload, err := EncodeResponseSinglePayload(resp, body)
	if err != nil {
		return err
	}
	return WritePayload(w, payload)
}

// EncodeResponseSinglePayload builds the version||type||fields||body
// payload without a length prefix, for transports (like the in-process
// direct-callback bridge) that pass payloads by reference instead of
// writing a length-prefixed frame to a byte stream.
func EncodeResponseSinglePayload(resp *ResponseDescriptor, body []byte) ([]byte, error) {
	bw := NewWriter(make([]byte, 0, 256+len(body)))
	bw.PutU8(ProtocolVersion)
	bw.PutU8(byte(TypeResponseTokenized))
	if err := resp.encodeFields(bw); err != nil {
		return nil, err
	}
	if err := bw.PutBytes(body); err != nil {
		return nil, err
	}
	return bw.Bytes(), nil
}

// EncodeResponseStart writes the header portion of a streaming response.
func EncodeResponseStart(w io.Writer, resp *ResponseDescriptor) error {
	payload, err := EncodeResponseStartPayload(resp)
	if err != nil {
		return err
	}
	return WritePayload(w, payload)
}

// EncodeResponseStartPayload builds a response-start payload without a
// length prefix. See EncodeResponseSinglePayload.
func EncodeResponseStartPayload(resp *ResponseDescriptor) ([]byte, error) {
	bw := NewWriter(make([]byte, 0, 256))
	bw.PutU8(ProtocolVersion)
	bw.PutU8(byte(TypeResponseStartTokenized))
	if err := resp.encodeFields(bw); err != nil {
		return nil, err
	}
	return bw.Bytes(), nil
}

// EncodeResponseChunk writes one response body chunk frame.
func EncodeResponseChunk(w io.Writer, chunk []byte) error {
	return WriteChunkFrame(w, TypeResponseChunk, chunk)
}

// EncodeResponseChunkPayload builds a response-chunk payload without a
// length prefix. See EncodeResponseSinglePayload.
func EncodeResponseChunkPayload(chunk []byte) []byte {
	payload := make([]byte, 2+4+len(chunk))
	payload[0] = ProtocolVersion
	payload[1] = byte(TypeResponseChunk)
	binary.BigEndian.PutUint32(payload[2:6], uint32(len(chunk)))
	copy(payload[6:], chunk)
	return payload
}

// EncodeResponseEnd writes the terminal frame of a streaming response.
func EncodeResponseEnd(w io.Writer) error {
	return WriteEmptyFrame(w, TypeResponseEnd)
}

// EncodeResponseEndPayload builds a response-end payload without a
// length prefix. See EncodeResponseSinglePayload.
func EncodeResponseEndPayload() []byte {
	return []byte{ProtocolVersion, byte(TypeResponseEnd)}
}

// DecodeResponseSingle decodes a single-frame response, accepting both the
// tokenized and legacy literal frame types.
func DecodeResponseSingle(typ FrameType, body []byte) (*ResponseDescriptor, []byte, error) {
	if typ != TypeResponse && typ != TypeResponseTokenized {
		return nil, nil, ErrUnexpectedFrameType
	}
	r := NewReader(body)
	resp, err := decodeResponseFields(r, typ == TypeResponseTokenized)
	if err != nil {
		return nil, nil, err
	}
	respBody, err := r.GetBytes()
	if err != nil {
		return nil, nil, err
	}
	if err := r.EnsureDone(); err != nil {
		return nil, nil, err
	}
	return resp, respBody, nil
}

// DecodeResponseStart decodes the header portion of a streaming response.
func DecodeResponseStart(typ FrameType, body []byte) (*ResponseDescriptor, error) {
	if typ != TypeResponseStart && typ != TypeResponseStartTokenized {
		return nil, ErrUnexpectedFrameType
	}
	r := NewReader(body)
	resp, err := decodeResponseFields(r, typ == TypeResponseStartTokenized)
	if err != nil {
		return nil, err
	}
	if err := r.EnsureDone(); err != nil {
		return nil, err
	}
	return resp, nil
}

// DecodeResponseChunk decodes a response body chunk frame.
func DecodeResponseChunk(typ FrameType, body []byte) ([]byte, error) {
	if typ != TypeResponseChunk {
		return nil, ErrUnexpectedFrameType
	}
	return DecodeChunkBody(body)
}

// DecodeResponseEnd validates a response-end frame's empty body.
func DecodeResponseEnd(typ FrameType, body []byte) error {
	if typ != TypeResponseEnd {
		return ErrUnexpectedFrameType
	}
	return DecodeEmptyBody(body)
}

// IsUpgradeStatus reports whether status is the WebSocket switching-protocols code.
func IsUpgradeStatus(status uint16) bool { return status == 101 }
