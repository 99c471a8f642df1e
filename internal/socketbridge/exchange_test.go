package socketbridge

import (
	"net"
	"testing"
	"time"

	"github.com/sadewadee/bridged/internal/bridgepool"
	"github.com/sadewadee/bridged/internal/wire"
)

// startFakeBackend runs a TCP listener that reads one request frame
// (single or streaming) and replies with a canned response, optionally
// closing the connection without replying on its first accept to
// exercise the empty-body retry path.
func startFakeBackend(t *testing.T, failFirst bool) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	first := failFirst

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn, dropConnection bool) {
				defer conn.Close()

				payload, ok, err := wire.ReadFrame(conn, nil)
				if err != nil || !ok {
					return
				}
				_, typ, body, err := wire.PeekHeader(payload)
				if err != nil {
					return
				}
				if typ == wire.TypeRequestStartTokenized {
					if _, err := wire.DecodeRequestStart(typ, body); err != nil {
						return
					}
					for {
						p, ok, err := wire.ReadFrame(conn, nil)
						if err != nil || !ok {
							return
						}
						_, t2, b2, err := wire.PeekHeader(p)
						if err != nil {
							return
						}
						if wire.IsEndFrame(t2) {
							break
						}
					}
				} else if _, _, err := wire.DecodeRequestSingle(typ, body); err != nil {
					return
				}

				if dropConnection {
					return
				}

				resp := &wire.ResponseDescriptor{Status: 200, Headers: []wire.HeaderField{
					{Name: "content-type", Value: []byte("text/plain")},
				}}
				_ = wire.EncodeResponseSingle(conn, resp, []byte("ok"))
			}(conn, first)
			first = false
		}
	}()

	return ln
}

func TestCallSingleFrameRoundTrip(t *testing.T) {
	ln := startFakeBackend(t, false)
	defer ln.Close()

	pool := bridgepool.New(bridgepool.Endpoint{Network: "tcp", Address: ln.Addr().String()}, 4)
	req := &wire.RequestDescriptor{Method: "GET", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}

	resp, err := Call(pool, req, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Status != 200 || string(resp.Body) != "ok" {
		t.Errorf("got status=%d body=%q", resp.Status, resp.Body)
	}
}

func TestCallRetriesOnEmptyBodyAfterStaleConnection(t *testing.T) {
	ln := startFakeBackend(t, true) // first accepted connection drops without replying
	defer ln.Close()

	pool := bridgepool.New(bridgepool.Endpoint{Network: "tcp", Address: ln.Addr().String()}, 4)
	req := &wire.RequestDescriptor{Method: "GET", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}

	resp, err := Call(pool, req, nil)
	if err != nil {
		t.Fatalf("Call should have retried and succeeded: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("got status=%d, want 200", resp.Status)
	}
}

func TestCallStreamingRequestRoundTrip(t *testing.T) {
	ln := startFakeBackend(t, false)
	defer ln.Close()

	pool := bridgepool.New(bridgepool.Endpoint{Network: "tcp", Address: ln.Addr().String()}, 4)
	req := &wire.RequestDescriptor{Method: "POST", Scheme: "http", Authority: "h", Path: "/upload", Protocol: "1.1"}
	body := make([]byte, wire.BodyChunk*3+17)

	resp, err := Call(pool, req, body)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("got status=%d, want 200", resp.Status)
	}
}

func TestCallDoesNotRetryAfterBodyWritten(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// Accept one connection and close it shortly after without
		// reading or responding: a write of a non-empty body must not retry.
		go func() {
			defer conn.Close()
			time.Sleep(10 * time.Millisecond)
		}()
	}()

	pool := bridgepool.New(bridgepool.Endpoint{Network: "tcp", Address: ln.Addr().String()}, 4)
	req := &wire.RequestDescriptor{Method: "POST", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}

	_, err = Call(pool, req, []byte("non-empty body"))
	if err == nil {
		t.Fatal("expected failure with no retry after a non-empty body was written")
	}
}
