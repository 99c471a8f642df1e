// Package tunnel splices a client's hijacked connection with the bridge
// after a successful WebSocket upgrade: once the 101 response has gone
// out, the front door stops parsing HTTP or WebSocket framing entirely
// and moves raw bytes in both directions until either side closes.
package tunnel

import (
	"fmt"
	"io"
	"net"

	"github.com/sadewadee/bridged/internal/bridgepool"
	"github.com/sadewadee/bridged/internal/wire"
)

// SpliceSocket pipes bytes between client (the hijacked HTTP connection,
// already past its 101 response) and backend (the bridge connection that
// negotiated the upgrade) until either side closes or errors. Bytes from
// the client are wrapped in Tunnel-Chunk frames going to the backend and
// unwrapped from Tunnel-Chunk frames coming back, since the backend
// speaks bridge-protocol framing even for tunneled payloads.
func SpliceSocket(client net.Conn, backend *bridgepool.Connection) error {
	errc := make(chan error, 2)

	go func() {
		errc <- pumpClientToBackend(client, backend)
	}()
	go func() {
		errc <- pumpBackendToClient(backend, client)
	}()

	err := <-errc
	client.Close()
	backend.Close()
	<-errc
	return err
}

func pumpClientToBackend(client net.Conn, backend io.Writer) error {
	buf := make([]byte, wire.BodyChunk)
	for {
		n, err := client.Read(buf)
		if n > 0 {
			if werr := wire.EncodeTunnelChunk(backend, buf[:n]); werr != nil {
				return fmt.Errorf("tunnel: writing chunk to backend: %w", werr)
			}
		}
		if err != nil {
			if err == io.EOF {
				return wire.EncodeTunnelClose(backend)
			}
			return fmt.Errorf("tunnel: reading from client: %w", err)
		}
	}
}

func pumpBackendToClient(backend *bridgepool.Connection, client io.Writer) error {
	for {
		payload, ok, err := wire.ReadFrame(backend, backend.ReadBuf)
		if err != nil {
			return fmt.Errorf("tunnel: reading frame from backend: %w", err)
		}
		if !ok {
			return nil
		}
		backend.ReadBuf = payload[:0]

		_, typ, body, err := wire.PeekHeader(payload)
		if err != nil {
			return fmt.Errorf("tunnel: decoding frame header: %w", err)
		}

		switch typ {
		case wire.TypeTunnelChunk:
			chunk, err := wire.DecodeTunnelChunk(typ, body)
			if err != nil {
				return fmt.Errorf("tunnel: decoding chunk: %w", err)
			}
			if _, err := client.Write(chunk); err != nil {
				return fmt.Errorf("tunnel: writing to client: %w", err)
			}
		case wire.TypeTunnelClose:
			return wire.DecodeTunnelClose(typ, body)
		default:
			return fmt.Errorf("tunnel: unexpected frame type %d from backend", typ)
		}
	}
}
