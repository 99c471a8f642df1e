package server

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadewadee/bridged/internal/benchfixture"
	"github.com/sadewadee/bridged/internal/config"
	"github.com/sadewadee/bridged/internal/directbridge"
	"github.com/sadewadee/bridged/internal/reload"
	"github.com/sadewadee/bridged/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestReloadBackendAcceptedInSocketMode(t *testing.T) {
	cfg := config.Default()
	srv := New(cfg, DirectWiring{}, testLogger())

	err := srv.ReloadBackend(&reload.Manifest{Generation: 2, BackendNetwork: "tcp", BackendAddress: "127.0.0.1:9100", MaxIdle: 16})
	if err != nil {
		t.Fatalf("ReloadBackend: %v", err)
	}
}

func TestReloadBackendRejectedInDirectMode(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Kind = config.BackendDirect
	cfg.Direct.Enabled = true

	noopInvoke := func(uint64, *wire.RequestDescriptor, []byte) error { return nil }
	srv := New(cfg, DirectWiring{Registry: directbridge.NewRegistry(), Invoke: noopInvoke}, testLogger())

	if err := srv.ReloadBackend(&reload.Manifest{}); err == nil {
		t.Fatal("expected ReloadBackend to fail in direct mode")
	}
}

func TestBuildBenchmarkResponseInline(t *testing.T) {
	cfg := &config.BenchmarkConfig{Enabled: true, Status: 204, Body: "inline"}
	resp := buildBenchmarkResponse(cfg, testLogger())
	if resp.Status != 204 || string(resp.Body) != "inline" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBuildBenchmarkResponseFixtureFallsBackOnError(t *testing.T) {
	cfg := &config.BenchmarkConfig{Enabled: true, Status: 200, Body: "fallback", FixturePath: "/nonexistent/fixture.msgpack"}
	resp := buildBenchmarkResponse(cfg, testLogger())
	if resp.Status != 200 || string(resp.Body) != "fallback" {
		t.Fatalf("expected fallback to inline status/body, got %+v", resp)
	}
}

func TestBuildBenchmarkResponseFixtureLoaded(t *testing.T) {
	fixture := &benchfixture.Fixture{Status: 418, Headers: map[string][]string{"X-Teapot": {"yes"}}, Body: []byte("short and stout")}
	data, err := fixture.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := &config.BenchmarkConfig{Enabled: true, FixturePath: path}
	resp := buildBenchmarkResponse(cfg, testLogger())
	if resp.Status != 418 || string(resp.Body) != "short and stout" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Headers["X-Teapot"][0] != "yes" {
		t.Fatalf("expected fixture headers to carry through, got %+v", resp.Headers)
	}
}
