package directbridge

import (
	"errors"
	"testing"
	"time"

	"github.com/sadewadee/bridged/internal/wire"
)

func TestCallDirectSingleFrameRoundTrip(t *testing.T) {
	reg := NewRegistry()
	invoke := func(id uint64, req *wire.RequestDescriptor, body []byte) error {
		go func() {
			_ = reg.PushResponse(id, &wire.ResponseDescriptor{Status: 200}, []byte("direct-ok"))
		}()
		return nil
	}

	req := &wire.RequestDescriptor{Method: "GET", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}
	resp, err := CallDirect(reg, invoke, req, nil)
	if err != nil {
		t.Fatalf("CallDirect: %v", err)
	}
	if resp.Status != 200 || string(resp.Body) != "direct-ok" {
		t.Errorf("got status=%d body=%q", resp.Status, resp.Body)
	}
}

func TestCallDirectStreamingRoundTrip(t *testing.T) {
	reg := NewRegistry()
	invoke := func(id uint64, req *wire.RequestDescriptor, body []byte) error {
		go func() {
			_ = reg.PushResponseStart(id, &wire.ResponseDescriptor{Status: 201})
			reg.PushResponseChunk(id, []byte("a"))
			reg.PushResponseChunk(id, []byte("b"))
			reg.PushResponseEnd(id)
		}()
		return nil
	}

	req := &wire.RequestDescriptor{Method: "POST", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}
	resp, err := CallDirect(reg, invoke, req, []byte("payload"))
	if err != nil {
		t.Fatalf("CallDirect: %v", err)
	}
	if resp.Status != 201 || string(resp.Body) != "ab" {
		t.Errorf("got status=%d body=%q", resp.Status, resp.Body)
	}
}

func TestCallDirectInvokeErrorPropagates(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("host rejected call")
	invoke := func(id uint64, req *wire.RequestDescriptor, body []byte) error {
		return boom
	}

	req := &wire.RequestDescriptor{Method: "GET", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}
	if _, err := CallDirect(reg, invoke, req, nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped invoke error, got %v", err)
	}
}

func TestCallDirectCompleteWithErrorSurfacesIt(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("host aborted mid-stream")
	invoke := func(id uint64, req *wire.RequestDescriptor, body []byte) error {
		go func() {
			reg.PushResponseChunk(id, []byte("partial"))
			reg.CompleteDirectRequest(id, boom)
		}()
		return nil
	}

	req := &wire.RequestDescriptor{Method: "GET", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}
	if _, err := CallDirect(reg, invoke, req, nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped completion error, got %v", err)
	}
}

func TestCallDirectTimesOutOnStalledHost(t *testing.T) {
	reg := NewRegistry()
	invoke := func(id uint64, req *wire.RequestDescriptor, body []byte) error {
		return nil // never pushes a frame or completes
	}

	orig := DirectTimeout
	DirectTimeout = 5 * time.Millisecond
	defer func() { DirectTimeout = orig }()

	req := &wire.RequestDescriptor{Method: "GET", Scheme: "http", Authority: "h", Path: "/x", Protocol: "1.1"}
	if _, err := CallDirect(reg, invoke, req, nil); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
