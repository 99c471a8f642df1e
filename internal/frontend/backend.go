package frontend

import (
	"github.com/sadewadee/bridged/internal/bridgepool"
	"github.com/sadewadee/bridged/internal/directbridge"
	"github.com/sadewadee/bridged/internal/socketbridge"
	"github.com/sadewadee/bridged/internal/wire"
)

// Backend performs one request/response exchange, regardless of which
// transport carries it. Handler dispatches ordinary (non-upgrade)
// requests through this interface; an upgrade request bypasses it
// entirely, since the upgrade handshake and the tunnel that follows
// share one underlying connection that Backend's simple request/response
// shape cannot express.
type Backend interface {
	Exchange(req *wire.RequestDescriptor, body []byte) (status uint16, headers []wire.HeaderField, respBody []byte, err error)
}

// SocketBackend adapts a pooled bridge connection pool to Backend.
type SocketBackend struct {
	Pool *bridgepool.Pool
}

func (b *SocketBackend) Exchange(req *wire.RequestDescriptor, body []byte) (uint16, []wire.HeaderField, []byte, error) {
	resp, err := socketbridge.Call(b.Pool, req, body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.Status, resp.Headers, resp.Body, nil
}

// DirectBackend adapts the in-process direct-callback registry to Backend.
type DirectBackend struct {
	Registry *directbridge.Registry
	Invoke   directbridge.Invoke
}

func (b *DirectBackend) Exchange(req *wire.RequestDescriptor, body []byte) (uint16, []wire.HeaderField, []byte, error) {
	resp, err := directbridge.CallDirect(b.Registry, b.Invoke, req, body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.Status, resp.Headers, resp.Body, nil
}
