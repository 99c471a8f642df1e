package directbridge

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/sadewadee/bridged/internal/wire"
)

// DirectTimeout bounds how long CallDirect waits for each successive
// response frame before giving up on a stalled host callback. It is a
// var, not a const, so tests can shrink it rather than waiting out a
// real 30 seconds.
var DirectTimeout = 30 * time.Second

// ErrTimeout is returned when a direct-callback exchange stalls for
// longer than DirectTimeout waiting on its next frame.
var ErrTimeout = errors.New("directbridge: timed out waiting for response frame")

// Invoke is the in-process entry point into the host runtime: given a
// request id already registered in the registry, it hands the request
// off to the host and returns once the call has been accepted (not once
// the response is complete — response frames arrive asynchronously via
// PushResponseFrame/CompleteDirectRequest).
type Invoke func(requestID uint64, req *wire.RequestDescriptor, body []byte) error

// Response is a fully reassembled direct-callback response.
type Response struct {
	Status  uint16
	Headers []wire.HeaderField
	Body    []byte
}

// CallDirect drives one request through the direct-callback transport:
// register a pending request, hand it to invoke, and reassemble whatever
// frames arrive through the registry into a Response. Each individual
// frame wait is bounded by DirectTimeout; a host callback that never
// starts producing frames, or stalls partway through a stream, fails
// the whole exchange rather than hanging forever.
func CallDirect(reg *Registry, invoke Invoke, req *wire.RequestDescriptor, body []byte) (*Response, error) {
	id, pending := reg.begin()
	defer reg.end(id)

	if err := invoke(id, req, body); err != nil {
		return nil, fmt.Errorf("directbridge: invoke failed: %w", err)
	}

	var status uint16
	var headers []wire.HeaderField
	var bodyBuf bytes.Buffer

	for {
		frame, ok, err := waitFrame(pending, DirectTimeout)
		if err != nil {
			return nil, err
		}
		if !ok {
			if closeErr := pending.Err(); closeErr != nil {
				return nil, fmt.Errorf("directbridge: host reported error: %w", closeErr)
			}
			return nil, errors.New("directbridge: host completed without a terminal response frame")
		}

		_, typ, fbody, err := wire.PeekHeader(frame)
		if err != nil {
			return nil, fmt.Errorf("directbridge: decoding response frame header: %w", err)
		}

		switch {
		case typ == wire.TypeResponseTokenized || typ == wire.TypeResponse:
			desc, respBody, err := wire.DecodeResponseSingle(typ, fbody)
			if err != nil {
				return nil, fmt.Errorf("directbridge: decoding response frame: %w", err)
			}
			if len(respBody) > wire.MaxBody {
				return nil, wire.ErrBodyTooLarge
			}
			return &Response{Status: desc.Status, Headers: desc.Headers, Body: respBody}, nil

		case typ == wire.TypeResponseStartTokenized || typ == wire.TypeResponseStart:
			desc, err := wire.DecodeResponseStart(typ, fbody)
			if err != nil {
				return nil, fmt.Errorf("directbridge: decoding response-start frame: %w", err)
			}
			status, headers = desc.Status, desc.Headers

		case wire.IsChunkFrame(typ):
			chunk, err := wire.DecodeResponseChunk(typ, fbody)
			if err != nil {
				return nil, fmt.Errorf("directbridge: decoding response-chunk frame: %w", err)
			}
			if bodyBuf.Len()+len(chunk) > wire.MaxBody {
				return nil, wire.ErrBodyTooLarge
			}
			bodyBuf.Write(chunk)

		case wire.IsEndFrame(typ):
			if err := wire.DecodeResponseEnd(typ, fbody); err != nil {
				return nil, fmt.Errorf("directbridge: decoding response-end frame: %w", err)
			}
			return &Response{Status: status, Headers: headers, Body: bodyBuf.Bytes()}, nil

		default:
			return nil, fmt.Errorf("directbridge: unexpected frame type %d in response", typ)
		}
	}
}

// waitFrame waits for the next frame on pending, bounded by timeout. ok
// is false once the exchange has completed with no further frames
// queued; err is non-nil only on a timeout.
func waitFrame(pending *PendingDirectRequest, timeout time.Duration) (frame []byte, ok bool, err error) {
	deadline := time.After(timeout)
	for {
		if frame, ok = pending.pop(); ok {
			return frame, true, nil
		}
		select {
		case <-pending.notify:
		case <-pending.done:
			if frame, ok = pending.pop(); ok {
				return frame, true, nil
			}
			return nil, false, nil
		case <-deadline:
			return nil, false, ErrTimeout
		}
	}
}
