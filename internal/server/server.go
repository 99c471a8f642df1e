package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sadewadee/bridged/internal/benchfixture"
	"github.com/sadewadee/bridged/internal/bridgepool"
	"github.com/sadewadee/bridged/internal/config"
	"github.com/sadewadee/bridged/internal/directbridge"
	"github.com/sadewadee/bridged/internal/frontend"
	"github.com/sadewadee/bridged/internal/reload"
	"github.com/sadewadee/bridged/internal/tunnel"
)

// DirectWiring supplies the callbacks that connect the in-process
// direct-callback transport to an embedded host runtime. It is only
// needed when cfg.Backend.Kind is config.BackendDirect; New ignores it
// otherwise.
type DirectWiring struct {
	Registry    *directbridge.Registry
	Invoke      directbridge.Invoke
	PushToHost  tunnel.PushToHost
	CloseToHost tunnel.CloseToHost
}

// Server is the bridge's HTTP front door.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	http    *http.Server
	http3   *HTTP3Server
	router  *Router
	metrics *Metrics

	// pool is non-nil only when cfg.Backend.Kind is config.BackendSocket;
	// it backs ReloadBackend.
	pool *bridgepool.Pool
}

// New builds a Server wired to whichever bridge transport cfg selects.
// direct may be the zero value when cfg.Backend.Kind is config.BackendSocket.
func New(cfg *config.Config, direct DirectWiring, logger *slog.Logger) *Server {
	s := &Server{cfg: cfg, logger: logger}

	var handler frontend.Handler
	var stats BridgeStats

	switch cfg.Backend.Kind {
	case config.BackendDirect:
		handler = frontend.Handler{
			Backend:     &frontend.DirectBackend{Registry: direct.Registry, Invoke: direct.Invoke},
			Registry:    direct.Registry,
			Invoke:      direct.Invoke,
			PushToHost:  direct.PushToHost,
			CloseToHost: direct.CloseToHost,
			Logger:      logger,
		}
		stats = NewDirectBridgeStats()

	default:
		pool := bridgepool.New(bridgepool.Endpoint{Network: cfg.Backend.Network, Address: cfg.Backend.Address}, cfg.Backend.MaxIdle)
		handler = frontend.Handler{
			Backend: &frontend.SocketBackend{Pool: pool},
			Pool:    pool,
			Logger:  logger,
		}
		stats = NewSocketBridgeStats(pool)
		s.pool = pool
	}

	if cfg.Benchmark.Enabled {
		handler.Benchmark = buildBenchmarkResponse(&cfg.Benchmark, logger)
	}

	s.metrics = NewMetrics(stats)
	s.router = NewRouter(cfg, &handler, stats, logger)

	s.http = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.buildMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if cfg.Server.HTTP2 {
		useTLS := cfg.Server.TLS.Auto || (cfg.Server.TLS.Cert != "" && cfg.Server.TLS.Key != "")
		if err := EnableHTTP2(s.http, useTLS); err != nil {
			logger.Warn("enabling HTTP/2", "error", err)
		}
	}

	return s
}

// buildBenchmarkResponse turns a BenchmarkConfig into the canned
// response the front door serves, preferring an on-disk msgpack
// fixture over the inline status/body pair when FixturePath is set.
func buildBenchmarkResponse(cfg *config.BenchmarkConfig, logger *slog.Logger) *frontend.BenchmarkResponse {
	if cfg.FixturePath != "" {
		fixture, err := benchfixture.LoadFile(cfg.FixturePath)
		if err != nil {
			logger.Error("loading benchmark fixture, falling back to inline status/body", "path", cfg.FixturePath, "error", err)
		} else {
			return &frontend.BenchmarkResponse{Status: fixture.Status, Headers: fixture.Headers, Body: fixture.Body}
		}
	}
	return &frontend.BenchmarkResponse{Status: cfg.Status, Body: []byte(cfg.Body)}
}

// ReloadBackend swaps the socket bridge pool's dial target to whatever
// m describes, without restarting the listener or dropping in-flight
// requests. In direct mode there is no pool to repoint, and it returns an
// error.
func (s *Server) ReloadBackend(m *reload.Manifest) error {
	if s.pool == nil {
		return fmt.Errorf("backend reload requested but backend.kind is not %q", config.BackendSocket)
	}
	s.logger.Info("reloading backend pool", "generation", m.Generation, "address", m.BackendAddress)
	s.pool.SetEndpoint(bridgepool.Endpoint{Network: m.BackendNetwork, Address: m.BackendAddress})
	return nil
}

// Start begins listening for HTTP connections.
func (s *Server) Start() error {
	s.logger.Info("bridged server starting",
		"address", s.cfg.Server.Address,
		"backend", s.cfg.Backend.Kind,
		"tls", s.cfg.Server.TLS.Auto,
		"http3", s.cfg.Server.HTTP3,
	)

	if s.cfg.Server.TLS.Auto || (s.cfg.Server.TLS.Cert != "" && s.cfg.Server.TLS.Key != "") {
		return s.startTLS()
	}
	return s.http.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("bridged server shutting down")
	if err := s.http3.Stop(ctx); err != nil {
		s.logger.Error("stopping HTTP/3 server", "error", err)
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) startTLS() error {
	if s.cfg.Server.TLS.Cert != "" && s.cfg.Server.TLS.Key != "" {
		tlsCert, err := tls.LoadX509KeyPair(s.cfg.Server.TLS.Cert, s.cfg.Server.TLS.Key)
		if err != nil {
			return fmt.Errorf("loading TLS cert/key: %w", err)
		}
		s.http.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{tlsCert},
			MinVersion:   tls.VersionTLS12,
		}
		s.startHTTP3()
		return s.http.ListenAndServeTLS(s.cfg.Server.TLS.Cert, s.cfg.Server.TLS.Key)
	}

	if !s.cfg.Server.TLS.Auto {
		return fmt.Errorf("TLS enabled but no cert/key provided and auto-TLS is disabled")
	}

	s.logger.Warn("auto-TLS: using self-signed certificate for development")

	cert, key, err := generateSelfSignedCert()
	if err != nil {
		return fmt.Errorf("generating self-signed cert: %w", err)
	}

	tlsCert, err := tls.X509KeyPair(cert, key)
	if err != nil {
		return fmt.Errorf("parsing self-signed cert: %w", err)
	}

	s.http.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		MinVersion:   tls.VersionTLS12,
	}

	s.startHTTP3()
	return s.http.ListenAndServeTLS("", "")
}

// startHTTP3 launches the HTTP/3 (QUIC) listener alongside the TLS
// server when cfg.Server.HTTP3 is set. It reuses s.http's handler and
// TLS config, which must already be populated.
func (s *Server) startHTTP3() {
	h3 := NewHTTP3Server(s.cfg, s.http.Handler, s.http.TLSConfig, s.logger)
	if h3 == nil {
		return
	}
	s.http3 = h3
	go func() {
		if err := h3.Start(); err != nil {
			s.logger.Error("HTTP/3 server error", "error", err)
		}
	}()
}

func (s *Server) buildMiddleware(handler http.Handler) http.Handler {
	// CoreMiddleware collapses Recovery + RequestID + EarlyHints + Logging
	// into a single handler with one pooled response writer and one context value.
	handler = CoreMiddleware(s.logger)(handler)

	if s.cfg.Metrics.Enabled {
		handler = s.metrics.Middleware(s.cfg.Metrics.Path)(handler)
	}

	if s.cfg.Server.HTTP3 {
		if port, err := addressPort(s.cfg.Server.Address); err == nil {
			handler = AltSvcMiddleware(port)(handler)
		} else {
			s.logger.Warn("could not derive port for Alt-Svc header, HTTP/3 advertisement disabled", "error", err)
		}
	}

	// Compression is outermost (wraps everything including metrics)
	handler = CompressionMiddleware()(handler)

	return handler
}

// addressPort extracts the numeric port from a "host:port" listen address.
func addressPort(address string) (int, error) {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
