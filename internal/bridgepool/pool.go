// Package bridgepool maintains reusable duplex connections to the
// application runtime backing the bridge protocol: a single-slot "hot"
// fast path plus a bounded idle list, matching the spec's non-blocking
// acquire/release contract (never wait for a peer; fall through to a
// fresh connect instead).
package bridgepool

import (
	"fmt"
	"net"
	"sync"

	"github.com/sadewadee/bridged/internal/wire"
)

// defaultReadBufferSize is the initial capacity for a fresh connection's
// reuse buffer, matching the conformance suite's pool-hygiene expectation.
const defaultReadBufferSize = 8 << 10 // 8 KiB

// Endpoint describes where to reach the application runtime.
type Endpoint struct {
	Network string // "tcp" or "unix"
	Address string // host:port for tcp, socket path for unix
}

// Connection owns a full-duplex byte stream plus a reusable read buffer.
// It is never shared between goroutines: the acquiring caller holds
// exclusive use of it until Release or until it is dropped on error.
type Connection struct {
	net.Conn
	ReadBuf []byte
}

// Pool is the bridge connection pool: one hot slot (LIFO fast path) plus
// a bounded idle list.
type Pool struct {
	endpoint Endpoint
	maxIdle  int

	mu   sync.Mutex
	hot  *Connection
	idle []*Connection
}

// New creates a pool targeting endpoint with at most maxIdle idle connections.
func New(endpoint Endpoint, maxIdle int) *Pool {
	return &Pool{endpoint: endpoint, maxIdle: maxIdle}
}

// Acquire returns a connection to drive one exchange: the hot slot, then
// the idle list, then a freshly dialed connection. It never blocks on a
// contended peer.
func (p *Pool) Acquire() (*Connection, error) {
	p.mu.Lock()
	if p.hot != nil {
		c := p.hot
		p.hot = nil
		p.mu.Unlock()
		return c, nil
	}
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()
	return p.ConnectNew()
}

// ConnectNew dials a brand new connection, bypassing the pool entirely.
// Used both by Acquire on a cold pool and by the empty-body retry path,
// which must not reuse a connection that may have gone stale.
func (p *Pool) ConnectNew() (*Connection, error) {
	conn, err := net.Dial(p.endpoint.Network, p.endpoint.Address)
	if err != nil {
		return nil, fmt.Errorf("connecting to bridge endpoint %s:%s: %w", p.endpoint.Network, p.endpoint.Address, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	return &Connection{Conn: conn, ReadBuf: make([]byte, 0, defaultReadBufferSize)}, nil
}

// Release returns c to the pool: refilling the hot slot if empty, else
// appending to the idle list if under maxIdle, else dropping (closing) it.
// The read buffer is reset to a small capacity if it grew past MaxFrame,
// so one oversized response does not pin memory for the connection's life.
func (p *Pool) Release(c *Connection) {
	if cap(c.ReadBuf) > wire.MaxFrame {
		c.ReadBuf = make([]byte, 0, defaultReadBufferSize)
	} else {
		c.ReadBuf = c.ReadBuf[:0]
	}

	p.mu.Lock()
	if p.hot == nil {
		p.hot = c
		p.mu.Unlock()
		return
	}
	if len(p.idle) < p.maxIdle {
		p.idle = append(p.idle, c)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	_ = c.Close()
}

// SetEndpoint swaps the dial target for future connections and closes
// every idle connection, so the next Acquire dials the new address
// instead of handing out a connection to the old one. A connection
// already checked out by a caller is unaffected; it is dropped or
// released like any other once that exchange finishes.
func (p *Pool) SetEndpoint(endpoint Endpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endpoint = endpoint
	for _, c := range p.idle {
		_ = c.Close()
	}
	p.idle = p.idle[:0]
	if p.hot != nil {
		_ = p.hot.Close()
		p.hot = nil
	}
}

// Drop closes c without returning it to the pool. Callers use this after
// any protocol or transport error, since the connection's framing state
// can no longer be trusted.
func (p *Pool) Drop(c *Connection) {
	_ = c.Close()
}

// Stats reports pool occupancy for health/metrics endpoints.
type Stats struct {
	HotOccupied bool
	Idle        int
	MaxIdle     int
}

// Stats returns a snapshot of current pool occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{HotOccupied: p.hot != nil, Idle: len(p.idle), MaxIdle: p.maxIdle}
}
