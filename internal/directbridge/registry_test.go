package directbridge

import (
	"testing"
	"time"
)

// TestPushResponseFrameNeverBlocksOnSlowConsumer pushes far more frames
// than the old bounded channel's capacity (8) with nothing draining the
// queue, and asserts every push returns immediately. A host callback
// thread must never stall waiting for an HTTP-side consumer.
func TestPushResponseFrameNeverBlocksOnSlowConsumer(t *testing.T) {
	reg := NewRegistry()
	id, pending := reg.begin()
	defer reg.end(id)

	const frameCount = 1000
	done := make(chan struct{})
	go func() {
		for i := 0; i < frameCount; i++ {
			if !reg.PushResponseFrame(id, []byte{byte(i)}) {
				t.Error("push rejected before request completed")
			}
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pushing frames blocked; queue should be unbounded")
	}

	for i := 0; i < frameCount; i++ {
		frame, ok := pending.pop()
		if !ok {
			t.Fatalf("expected frame %d, queue drained early", i)
		}
		if frame[0] != byte(i) {
			t.Fatalf("frame %d out of order: got %d", i, frame[0])
		}
	}
	if _, ok := pending.pop(); ok {
		t.Fatal("expected queue to be empty after draining all pushed frames")
	}
}

func TestPushResponseFrameRejectedAfterComplete(t *testing.T) {
	reg := NewRegistry()
	id, _ := reg.begin()
	defer reg.end(id)

	reg.CompleteDirectRequest(id, nil)
	if reg.PushResponseFrame(id, []byte("late")) {
		t.Fatal("expected push after completion to be rejected")
	}
}

func TestNextFrameReturnsFalseOnceDrainedAndDone(t *testing.T) {
	reg := NewRegistry()
	id, pending := reg.begin()
	defer reg.end(id)

	reg.PushResponseFrame(id, []byte("only"))
	reg.CompleteDirectRequest(id, nil)

	frame, ok := pending.NextFrame()
	if !ok || string(frame) != "only" {
		t.Fatalf("expected queued frame before drain, got %q ok=%v", frame, ok)
	}

	if _, ok := pending.NextFrame(); ok {
		t.Fatal("expected NextFrame to report completion once queue drained")
	}
}
