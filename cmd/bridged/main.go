package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sadewadee/bridged/internal/config"
	"github.com/sadewadee/bridged/internal/reload"
	"github.com/sadewadee/bridged/internal/server"
)

var version = "0.1.0-dev"

func main() {
	runtime.GOMAXPROCS(min(max(runtime.NumCPU(), 2), 16))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve", "start":
		serve()
	case "version":
		fmt.Printf("bridged v%s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve() {
	cfgPath := "bridged.yaml"
	if len(os.Args) > 2 {
		cfgPath = os.Args[2]
	}

	logger, startupCloser := setupLogger("info", "json", "stdout")
	if startupCloser != nil {
		defer startupCloser.Close()
	}
	logger.Info("bridged starting", "version", version)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	if startupCloser != nil {
		_ = startupCloser.Close()
		startupCloser = nil
	}
	logger, logCloser := setupLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if logCloser != nil {
		defer logCloser.Close()
	}

	// The direct-callback transport has no host runtime to invoke from a
	// standalone binary; it is reached only by embedding *server.Server in
	// a process that supplies its own DirectWiring. The CLI only drives
	// the socket bridge.
	if cfg.Backend.Kind == config.BackendDirect {
		logger.Error("backend.kind=direct requires embedding the server package with a host-supplied DirectWiring; the bridged binary only drives the socket backend")
		os.Exit(1)
	}

	srv := server.New(cfg, server.DirectWiring{}, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// SIGUSR1 reloads the socket bridge pool's dial target from the
	// configured manifest file, without dropping the listener. With no
	// manifest path configured it is acknowledged but a no-op.
	reloadSig := make(chan os.Signal, 1)
	signal.Notify(reloadSig, syscall.SIGUSR1)
	go func() {
		for range reloadSig {
			if cfg.Backend.ReloadManifestPath == "" {
				logger.Info("SIGUSR1 received, but backend.reload_manifest_path is unset; ignoring")
				continue
			}
			manifest, err := reload.LoadFile(cfg.Backend.ReloadManifestPath)
			if err != nil {
				logger.Error("SIGUSR1 reload: loading manifest", "error", err)
				continue
			}
			if err := srv.ReloadBackend(manifest); err != nil {
				logger.Error("SIGUSR1 reload failed", "error", err)
			}
		}
	}()

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	logger.Info("bridged ready", "address", cfg.Server.Address, "backend", cfg.Backend.Kind)

	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("bridged stopped")
}

func setupLogger(level, format, output string) (*slog.Logger, io.Closer) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writer, closer := resolveLogOutput(output)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler), closer
}

func resolveLogOutput(output string) (io.Writer, io.Closer) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stdout, nil
		}
		return f, f
	}
}

func printUsage() {
	fmt.Println(`bridged - Embedded bridge-protocol front door

Usage:
  bridged <command> [options]

Commands:
  serve [config]   Start the server (default config: bridged.yaml)
  start [config]   Alias for serve
  version          Show version
  help             Show this help

Signals:
  SIGUSR1          Reload the socket backend pool's dial target from
                   backend.reload_manifest_path (no-op if unset)
  SIGINT/SIGTERM   Graceful shutdown

Examples:
  bridged serve
  bridged serve /etc/bridged/bridged.yaml
  bridged version

Backends:
  socket   Request/response frames over a pooled TCP or Unix-domain socket.
  direct   In-process callback transport; only reachable by embedding the
           server package, not by this CLI.`)
}
