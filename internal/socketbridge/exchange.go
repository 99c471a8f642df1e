// Package socketbridge drives one HTTP exchange over a pooled bridge
// connection: write the request frame(s), read the response frame(s),
// and retry exactly once on a fresh connection if nothing irreversible
// was written yet.
package socketbridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sadewadee/bridged/internal/bridgepool"
	"github.com/sadewadee/bridged/internal/wire"
)

// ErrConnectionReset is returned when the peer closes the connection
// before a complete response is read and no retry is possible.
var ErrConnectionReset = errors.New("socketbridge: connection reset before response")

// Response is a fully reassembled response: status, headers and body.
type Response struct {
	Status  uint16
	Headers []wire.HeaderField
	Body    []byte
}

// Call performs one request/response exchange against pool, encoding a
// single-frame request when body is at most wire.BodyChunk bytes and a
// start/chunk/end sequence otherwise. It retries
// once, against a brand new connection, if the failure happened before
// any body bytes were written to the wire — matching the bridge's
// empty-body retry policy for pooled sockets that went stale between
// uses.
func Call(pool *bridgepool.Pool, req *wire.RequestDescriptor, body []byte) (*Response, error) {
	conn, err := pool.Acquire()
	if err != nil {
		return nil, err
	}

	resp, wroteBody, err := exchange(conn, req, body)
	if err == nil {
		pool.Release(conn)
		return resp, nil
	}
	pool.Drop(conn)

	if wroteBody {
		return nil, fmt.Errorf("socketbridge: exchange failed after writing body, no retry: %w", err)
	}

	fresh, dialErr := pool.ConnectNew()
	if dialErr != nil {
		return nil, fmt.Errorf("socketbridge: retry dial failed: %w", dialErr)
	}
	resp, _, err = exchange(fresh, req, body)
	if err != nil {
		pool.Drop(fresh)
		return nil, fmt.Errorf("socketbridge: retry exchange failed: %w", err)
	}
	pool.Release(fresh)
	return resp, nil
}

// exchange writes the request and reads the response over conn. The
// returned bool reports whether any body bytes were written before a
// failure, which callers use to decide whether a retry is safe.
func exchange(conn *bridgepool.Connection, req *wire.RequestDescriptor, body []byte) (*Response, bool, error) {
	if len(body) <= wire.BodyChunk {
		if err := wire.EncodeRequestSingle(conn, req, body); err != nil {
			return nil, len(body) > 0, fmt.Errorf("writing request frame: %w", err)
		}
	} else {
		if err := wire.EncodeRequestStart(conn, req); err != nil {
			return nil, false, fmt.Errorf("writing request-start frame: %w", err)
		}
		for off := 0; off < len(body); off += wire.BodyChunk {
			end := off + wire.BodyChunk
			if end > len(body) {
				end = len(body)
			}
			if err := wire.EncodeRequestChunk(conn, body[off:end]); err != nil {
				return nil, true, fmt.Errorf("writing request-chunk frame: %w", err)
			}
		}
		if err := wire.EncodeRequestEnd(conn); err != nil {
			return nil, true, fmt.Errorf("writing request-end frame: %w", err)
		}
	}

	resp, err := readResponse(conn)
	wroteBody := len(body) > 0
	if err != nil {
		return nil, wroteBody, err
	}
	return resp, wroteBody, nil
}

// readResponse reads one response, which may arrive as a single frame
// or as a start/chunk*/end sequence, and reassembles it into Response.
func readResponse(conn *bridgepool.Connection) (*Response, error) {
	var status uint16
	var headers []wire.HeaderField
	var bodyBuf bytes.Buffer
	started := false

	for {
		payload, ok, err := wire.ReadFrame(conn, conn.ReadBuf)
		if err != nil {
			return nil, fmt.Errorf("reading response frame: %w", err)
		}
		if !ok {
			if !started && bodyBuf.Len() == 0 {
				return nil, ErrConnectionReset
			}
			return nil, io.ErrUnexpectedEOF
		}
		conn.ReadBuf = payload[:0]

		_, typ, fbody, err := wire.PeekHeader(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding response frame header: %w", err)
		}

		switch {
		case typ == wire.TypeResponseTokenized || typ == wire.TypeResponse:
			desc, respBody, err := wire.DecodeResponseSingle(typ, fbody)
			if err != nil {
				return nil, fmt.Errorf("decoding response frame: %w", err)
			}
			if len(respBody) > wire.MaxBody {
				return nil, wire.ErrBodyTooLarge
			}
			return &Response{Status: desc.Status, Headers: desc.Headers, Body: respBody}, nil

		case typ == wire.TypeResponseStartTokenized || typ == wire.TypeResponseStart:
			desc, err := wire.DecodeResponseStart(typ, fbody)
			if err != nil {
				return nil, fmt.Errorf("decoding response-start frame: %w", err)
			}
			status, headers = desc.Status, desc.Headers
			started = true

		case wire.IsChunkFrame(typ):
			chunk, err := wire.DecodeResponseChunk(typ, fbody)
			if err != nil {
				return nil, fmt.Errorf("decoding response-chunk frame: %w", err)
			}
			if bodyBuf.Len()+len(chunk) > wire.MaxBody {
				return nil, wire.ErrBodyTooLarge
			}
			bodyBuf.Write(chunk)

		case wire.IsEndFrame(typ):
			if err := wire.DecodeResponseEnd(typ, fbody); err != nil {
				return nil, fmt.Errorf("decoding response-end frame: %w", err)
			}
			return &Response{Status: status, Headers: headers, Body: bodyBuf.Bytes()}, nil

		default:
			return nil, fmt.Errorf("socketbridge: unexpected frame type %d in response", typ)
		}
	}
}
