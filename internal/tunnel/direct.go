package tunnel

import (
	"fmt"
	"io"
	"net"

	"github.com/sadewadee/bridged/internal/directbridge"
	"github.com/sadewadee/bridged/internal/wire"
)

// PushToHost hands one chunk of client-originated bytes to the host
// runtime for a tunnel identified by requestID. Implementations are
// provided by the embedder; the in-process direct-callback transport has
// no socket of its own to carry these bytes over, so the host must
// expose an entry point the splice loop can call directly.
type PushToHost func(requestID uint64, chunk []byte) error

// CloseToHost tells the host runtime the client side of the tunnel has
// closed; no more PushToHost calls will follow for requestID.
type CloseToHost func(requestID uint64) error

// SpliceDirect pipes bytes between client and the host runtime through
// reg for the tunnel registered as requestID. Unlike SpliceSocket, there
// is no backend net.Conn: outbound bytes go through push, and inbound
// bytes arrive as Tunnel-Chunk/Tunnel-Close frames pushed into reg by the
// host side (via Registry.PushResponseFrame) from another goroutine.
func SpliceDirect(client net.Conn, reg *directbridge.Registry, requestID uint64, pending *directbridge.PendingDirectRequest, push PushToHost, closeHost CloseToHost) error {
	errc := make(chan error, 2)

	go func() {
		errc <- pumpClientToHost(client, requestID, push, closeHost)
	}()
	go func() {
		errc <- pumpHostToClient(pending, client)
	}()

	err := <-errc
	client.Close()
	<-errc
	return err
}

func pumpClientToHost(client net.Conn, requestID uint64, push PushToHost, closeHost CloseToHost) error {
	buf := make([]byte, wire.BodyChunk)
	for {
		n, err := client.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if perr := push(requestID, chunk); perr != nil {
				return fmt.Errorf("tunnel: pushing chunk to host: %w", perr)
			}
		}
		if err != nil {
			if err == io.EOF {
				return closeHost(requestID)
			}
			return fmt.Errorf("tunnel: reading from client: %w", err)
		}
	}
}

func pumpHostToClient(pending *directbridge.PendingDirectRequest, client io.Writer) error {
	for {
		frame, ok := pending.NextFrame()
		if !ok {
			return nil
		}

		_, typ, body, err := wire.PeekHeader(frame)
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
		case wire.TypeResponseEnd:
			// The host may close the response stream before the tunnel
			// itself closes; an incidental response-end here is expected.
		default:
			return fmt.Errorf("tunnel: unexpected frame type %d from host", typ)
		}
	}
}
