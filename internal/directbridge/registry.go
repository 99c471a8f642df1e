// Package directbridge implements the in-process bridge transport: an
// embedded host runtime invokes Go entry points directly (no socket, no
// serialization boundary) and pushes response frames back through a
// request-id-keyed registry instead of a return value, since the host
// call may itself be asynchronous with respect to response delivery.
package directbridge

import (
	"sync"
	"sync/atomic"
)

// PendingDirectRequest tracks one in-flight direct-callback exchange.
// queue carries raw wire payloads (as produced by wire.EncodeResponse*)
// pushed in arrival order by the host side; it grows without bound so
// PushResponseFrame never blocks the host's calling thread on a slow
// consumer. notify is signaled (non-blocking, capacity 1) whenever a
// frame is appended; done is closed exactly once, by
// CompleteDirectRequest, to signal no further frames will arrive.
type PendingDirectRequest struct {
	mu     sync.Mutex
	queue  [][]byte
	notify chan struct{}

	done     chan struct{}
	closeErr error
}

// Registry is the request-id-keyed table of in-flight direct-callback
// exchanges, mirroring the embedded-engine callback context map but
// keyed by request id instead of worker thread id.
type Registry struct {
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*PendingDirectRequest
}

// NewRegistry creates an empty direct-request registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[uint64]*PendingDirectRequest)}
}

// Begin allocates a fresh request id and registers its pending entry,
// for transports (like the WebSocket tunnel) that manage their own
// lifetime instead of going through CallDirect. Callers must pair this
// with End once the exchange is fully drained.
func (reg *Registry) Begin() (uint64, *PendingDirectRequest) {
	return reg.begin()
}

// End removes the pending entry for id. See Begin.
func (reg *Registry) End(id uint64) {
	reg.end(id)
}

// NextFrame blocks until a frame is available for p, or the exchange
// completes. ok is false once the queue has drained and done has been
// closed, meaning no further frame will ever arrive.
func (p *PendingDirectRequest) NextFrame() (frame []byte, ok bool) {
	for {
		if frame, ok = p.pop(); ok {
			return frame, true
		}
		select {
		case <-p.notify:
		case <-p.done:
			if frame, ok = p.pop(); ok {
				return frame, true
			}
			return nil, false
		}
	}
}

// Err returns the terminal error the host side reported to
// CompleteDirectRequest, or nil if the exchange is still open or
// finished cleanly.
func (p *PendingDirectRequest) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeErr
}

// Done exposes the completion channel for a pending request.
func (p *PendingDirectRequest) Done() <-chan struct{} { return p.done }

// pop removes and returns the oldest queued frame, if any.
func (p *PendingDirectRequest) pop() ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, false
	}
	frame := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return frame, true
}

// begin allocates a fresh request id and registers its pending entry.
func (reg *Registry) begin() (uint64, *PendingDirectRequest) {
	id := reg.nextID.Add(1)
	p := &PendingDirectRequest{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	reg.mu.Lock()
	reg.pending[id] = p
	reg.mu.Unlock()
	return id, p
}

// end removes the pending entry for id; callers invoke this once the
// exchange is fully drained, successfully or not.
func (reg *Registry) end(id uint64) {
	reg.mu.Lock()
	delete(reg.pending, id)
	reg.mu.Unlock()
}

func (reg *Registry) lookup(id uint64) *PendingDirectRequest {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.pending[id]
}

// PushResponseFrame delivers one raw wire-encoded response frame for
// requestID. It is the entry point the host runtime calls from its own
// thread, outside of any lock CallDirect might be holding: the frame is
// appended to an unbounded queue under p.mu and the notify signal is
// sent without blocking, so a slow or stalled HTTP-side consumer can
// never stall the host's calling thread.
func (reg *Registry) PushResponseFrame(requestID uint64, frame []byte) bool {
	p := reg.lookup(requestID)
	if p == nil {
		return false
	}
	owned := append([]byte(nil), frame...)

	p.mu.Lock()
	select {
	case <-p.done:
		p.mu.Unlock()
		return false
	default:
	}
	p.queue = append(p.queue, owned)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
	return true
}

// CompleteDirectRequest signals that no further frames will arrive for
// requestID, optionally carrying the terminal error the host side
// observed (nil on a clean finish). Safe to call at most once per
// request; a second call is a no-op.
func (reg *Registry) CompleteDirectRequest(requestID uint64, err error) {
	p := reg.lookup(requestID)
	if p == nil {
		return
	}
	p.mu.Lock()
	select {
	case <-p.done:
		p.mu.Unlock()
		return
	default:
		p.closeErr = err
		close(p.done)
	}
	p.mu.Unlock()
}
