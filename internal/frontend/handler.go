package frontend

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sadewadee/bridged/internal/bridgepool"
	"github.com/sadewadee/bridged/internal/directbridge"
	"github.com/sadewadee/bridged/internal/tunnel"
	"github.com/sadewadee/bridged/internal/wire"
)

// Handler is the HTTP front door: every request lands here, gets
// translated to a RequestDescriptor, and is either exchanged through
// Backend or, for a WebSocket upgrade, spliced into a raw tunnel.
type Handler struct {
	Backend Backend
	Logger  *slog.Logger

	// Pool, Registry, Invoke, PushToHost and CloseToHost back the
	// upgrade path, which needs transport-specific control Backend's
	// simple request/response shape does not expose. Exactly one of
	// Pool or Registry is set, matching whichever transport Backend
	// itself wraps.
	Pool        *bridgepool.Pool
	Registry    *directbridge.Registry
	Invoke      directbridge.Invoke
	PushToHost  tunnel.PushToHost
	CloseToHost tunnel.CloseToHost

	// Benchmark, when non-nil, short-circuits every request with a
	// canned response instead of reaching the backend at all, so the
	// front door's own HTTP-handling overhead can be measured in
	// isolation from the bridge transports.
	Benchmark *BenchmarkResponse
}

// BenchmarkResponse is the canned response Handler returns when running
// in benchmark mode.
type BenchmarkResponse struct {
	Status  int
	Headers map[string][]string
	Body    []byte
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h.Benchmark != nil {
		for name, values := range h.Benchmark.Headers {
			for _, v := range values {
				w.Header().Add(name, v)
			}
		}
		w.WriteHeader(h.Benchmark.Status)
		w.Write(h.Benchmark.Body)
		return
	}

	descriptor := BuildRequestDescriptor(req)

	// gorilla/websocket's own upgrade check, not a hand-rolled one, so the
	// front door agrees with the same library an embedder would use to
	// validate a handshake on the other side of a tunnel.
	if websocket.IsWebSocketUpgrade(req) {
		h.serveUpgrade(w, req, descriptor)
		return
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(req.Body, wire.MaxBody+1))
		if err != nil {
			h.Logger.Error("reading request body", "error", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) > wire.MaxBody {
			h.Logger.Error("request body exceeds maximum size", "error", wire.ErrBodyTooLarge)
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
	}

	status, headers, respBody, err := h.Backend.Exchange(descriptor, body)
	if err != nil {
		h.Logger.Error("bridge exchange failed", "error", err, "path", descriptor.Path)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	writeHeaders(w.Header(), headers)
	w.WriteHeader(int(status))
	w.Write(respBody)
}

// writeHeaders copies a bridge header list onto an http.Header, using
// Add rather than Set so repeated header names (Set-Cookie, Vary) survive
// the round trip instead of collapsing to their last value.
func writeHeaders(dst http.Header, headers []wire.HeaderField) {
	for _, h := range headers {
		dst.Add(h.Name, string(h.Value))
	}
}

func (h *Handler) serveUpgrade(w http.ResponseWriter, req *http.Request, descriptor *wire.RequestDescriptor) {
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "upgrade not supported", http.StatusInternalServerError)
		return
	}

	if h.Pool != nil {
		h.serveSocketUpgrade(hijacker, descriptor)
		return
	}
	h.serveDirectUpgrade(hijacker, descriptor)
}

func (h *Handler) serveSocketUpgrade(hijacker http.Hijacker, descriptor *wire.RequestDescriptor) {
	conn, err := h.Pool.Acquire()
	if err != nil {
		h.Logger.Error("acquiring bridge connection for upgrade", "error", err)
		return
	}

	if err := wire.EncodeRequestSingle(conn, descriptor, nil); err != nil {
		h.Logger.Error("writing upgrade request", "error", err)
		h.Pool.Drop(conn)
		return
	}

	payload, ok, err := wire.ReadFrame(conn, conn.ReadBuf)
	if err != nil || !ok {
		h.Logger.Error("reading upgrade response", "error", err)
		h.Pool.Drop(conn)
		return
	}
	conn.ReadBuf = payload[:0]

	_, typ, fbody, err := wire.PeekHeader(payload)
	if err != nil {
		h.Logger.Error("decoding upgrade response header", "error", err)
		h.Pool.Drop(conn)
		return
	}
	resp, respBody, err := wire.DecodeResponseSingle(typ, fbody)
	if err != nil {
		h.Logger.Error("decoding upgrade response", "error", err)
		h.Pool.Drop(conn)
		return
	}

	client, bufrw, err := hijacker.Hijack()
	if err != nil {
		h.Logger.Error("hijacking client connection", "error", err)
		h.Pool.Drop(conn)
		return
	}
	defer client.Close()

	if err := writeRawResponse(bufrw, resp.Status, resp.Headers, respBody); err != nil {
		h.Logger.Error("writing upgrade handshake to client", "error", err)
		h.Pool.Drop(conn)
		return
	}

	if !wire.IsUpgradeStatus(resp.Status) {
		h.Pool.Release(conn)
		return
	}

	if err := tunnel.SpliceSocket(client, conn); err != nil {
		h.Logger.Debug("tunnel closed", "error", err)
	}
}

func (h *Handler) serveDirectUpgrade(hijacker http.Hijacker, descriptor *wire.RequestDescriptor) {
	id, pending := h.Registry.Begin()

	if err := h.Invoke(id, descriptor, nil); err != nil {
		h.Logger.Error("invoking direct upgrade", "error", err)
		h.Registry.End(id)
		return
	}

	frame, ok := pending.NextFrame()
	if !ok {
		h.Registry.End(id)
		h.Logger.Error("direct upgrade completed with no response frame")
		return
	}

	_, typ, fbody, err := wire.PeekHeader(frame)
	if err != nil {
		h.Registry.End(id)
		h.Logger.Error("decoding direct upgrade response header", "error", err)
		return
	}
	resp, respBody, err := wire.DecodeResponseSingle(typ, fbody)
	if err != nil {
		h.Registry.End(id)
		h.Logger.Error("decoding direct upgrade response", "error", err)
		return
	}

	client, bufrw, err := hijacker.Hijack()
	if err != nil {
		h.Registry.End(id)
		h.Logger.Error("hijacking client connection", "error", err)
		return
	}
	defer client.Close()
	defer h.Registry.End(id)

	if err := writeRawResponse(bufrw, resp.Status, resp.Headers, respBody); err != nil {
		h.Logger.Error("writing direct upgrade handshake to client", "error", err)
		return
	}

	if !wire.IsUpgradeStatus(resp.Status) {
		return
	}

	if err := tunnel.SpliceDirect(client, h.Registry, id, pending, h.PushToHost, h.CloseToHost); err != nil {
		h.Logger.Debug("direct tunnel closed", "error", err)
	}
}

func writeRawResponse(bufrw *bufio.ReadWriter, status uint16, headers []wire.HeaderField, body []byte) error {
	if _, err := fmt.Fprintf(bufrw, "HTTP/1.1 %d %s\r\n", status, http.StatusText(int(status))); err != nil {
		return err
	}
	for _, hd := range headers {
		if _, err := fmt.Fprintf(bufrw, "%s: %s\r\n", hd.Name, hd.Value); err != nil {
			return err
		}
	}
	if _, err := bufrw.WriteString("\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := bufrw.Write(body); err != nil {
			return err
		}
	}
	return bufrw.Flush()
}
