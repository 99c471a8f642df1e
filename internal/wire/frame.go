package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sadewadee/bridged/internal/vecio"
)

// ReadFrame reads one length-prefixed frame from r into reuse (growing it
// if needed) and returns the payload (version || type || body). ok is
// false with a nil error when the stream closed cleanly before any bytes
// of a new frame arrived (EOF at frame boundary); any other EOF is a hard
// error since it means a frame was only partially delivered.
func ReadFrame(r io.Reader, reuse []byte) (payload []byte, ok bool, err error) {
	var lenBuf [4]byte
	n, err := io.ReadFull(r, lenBuf[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading bridge frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxFrame {
		return nil, false, errFrameTooLarge(int(length))
	}

	if cap(reuse) < int(length) {
		reuse = make([]byte, length)
	} else {
		reuse = reuse[:length]
	}
	if _, err := io.ReadFull(r, reuse); err != nil {
		return nil, false, fmt.Errorf("reading bridge frame payload: %w", err)
	}
	return reuse, true, nil
}

// WritePayload writes a complete payload (version || type || body) as one
// length-prefixed frame, coalescing or vectoring per vecio's threshold.
func WritePayload(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrame {
		return errFrameTooLarge(len(payload))
	}
	var lenHdr [4]byte
	binary.BigEndian.PutUint32(lenHdr[:], uint32(len(payload)))
	return vecio.WriteAll(w, [][]byte{lenHdr[:], payload})
}

// WriteChunkFrame writes a chunk-shaped frame: outer length, then a 6-byte
// inner prefix (version, type, chunk_len:u32BE), then the chunk bytes.
func WriteChunkFrame(w io.Writer, typ FrameType, chunk []byte) error {
	total := 6 + len(chunk)
	if total > MaxFrame {
		return errFrameTooLarge(total)
	}
	var lenHdr [4]byte
	binary.BigEndian.PutUint32(lenHdr[:], uint32(total))

	var prefix [6]byte
	prefix[0] = ProtocolVersion
	prefix[1] = byte(typ)
	binary.BigEndian.PutUint32(prefix[2:6], uint32(len(chunk)))

	return vecio.WriteAll(w, [][]byte{lenHdr[:], prefix[:], chunk})
}

// WriteEmptyFrame writes a frame with no body (request/response/tunnel end).
func WriteEmptyFrame(w io.Writer, typ FrameType) error {
	payload := []byte{ProtocolVersion, byte(typ)}
	return WritePayload(w, payload)
}

// PeekHeader splits a frame payload into its version, type, and remaining
// body, validating the version against IsSupportedVersion.
func PeekHeader(payload []byte) (version uint8, typ FrameType, body []byte, err error) {
	if len(payload) < 2 {
		return 0, 0, nil, ErrTruncated
	}
	version = payload[0]
	if !IsSupportedVersion(version) {
		return 0, 0, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return version, FrameType(payload[1]), payload[2:], nil
}

// DecodeChunkBody decodes the [chunk_len:u32BE || bytes] body shared by
// request-chunk, response-chunk, and tunnel-chunk frames.
func DecodeChunkBody(body []byte) ([]byte, error) {
	r := NewReader(body)
	chunk, err := r.GetBytes()
	if err != nil {
		return nil, err
	}
	if err := r.EnsureDone(); err != nil {
		return nil, err
	}
	return chunk, nil
}

// DecodeEmptyBody asserts body carries no bytes, for request/response/tunnel
// end frames.
func DecodeEmptyBody(body []byte) error {
	return NewReader(body).EnsureDone()
}
