package tunnel

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sadewadee/bridged/internal/directbridge"
)

func TestSpliceDirectForwardsBothDirections(t *testing.T) {
	reg := directbridge.NewRegistry()
	id, pending := reg.Begin()
	defer reg.End(id)

	hostSaw := make(chan []byte, 1)
	push := func(reqID uint64, chunk []byte) error {
		hostSaw <- chunk
		reg.PushTunnelChunk(reqID, []byte("direct-reply"))
		reg.PushTunnelClose(reqID)
		return nil
	}
	closeHost := func(reqID uint64) error { return nil }

	clientSide, serverSide := net.Pipe()

	go func() {
		clientSide.Write([]byte("ping"))
	}()

	var got bytes.Buffer
	doneReading := make(chan struct{})
	go func() {
		io.Copy(&got, clientSide)
		close(doneReading)
	}()

	if err := SpliceDirect(serverSide, reg, id, pending, push, closeHost); err != nil {
		t.Fatalf("SpliceDirect: %v", err)
	}

	select {
	case chunk := <-hostSaw:
		if string(chunk) != "ping" {
			t.Errorf("host saw %q, want %q", chunk, "ping")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for host to observe client bytes")
	}

	select {
	case <-doneReading:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client-side read pump to finish")
	}
	if got.String() != "direct-reply" {
		t.Errorf("client got %q, want %q", got.String(), "direct-reply")
	}
}

// TestSpliceDirectIgnoresIncidentalResponseEnd covers the case where the
// host closes the HTTP response stream before the tunnel itself closes;
// the stray response-end frame must not be treated as a protocol error.
func TestSpliceDirectIgnoresIncidentalResponseEnd(t *testing.T) {
	reg := directbridge.NewRegistry()
	id, pending := reg.Begin()
	defer reg.End(id)

	push := func(reqID uint64, chunk []byte) error {
		reg.PushResponseEnd(reqID)
		reg.PushTunnelChunk(reqID, []byte("still-open"))
		reg.PushTunnelClose(reqID)
		return nil
	}
	closeHost := func(reqID uint64) error { return nil }

	clientSide, serverSide := net.Pipe()
	go func() {
		clientSide.Write([]byte("go"))
	}()

	var got bytes.Buffer
	doneReading := make(chan struct{})
	go func() {
		io.Copy(&got, clientSide)
		close(doneReading)
	}()

	if err := SpliceDirect(serverSide, reg, id, pending, push, closeHost); err != nil {
		t.Fatalf("SpliceDirect: %v", err)
	}

	select {
	case <-doneReading:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client-side read pump to finish")
	}
	if got.String() != "still-open" {
		t.Errorf("client got %q, want %q after incidental response-end", got.String(), "still-open")
	}
}
