package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Address != "0.0.0.0:8080" {
		t.Errorf("expected default address 0.0.0.0:8080, got %s", cfg.Server.Address)
	}
	if cfg.Backend.Kind != BackendSocket {
		t.Errorf("expected default backend kind %q, got %q", BackendSocket, cfg.Backend.Kind)
	}
	if cfg.Backend.MaxIdle != 256 {
		t.Errorf("expected backend.max_idle 256, got %d", cfg.Backend.MaxIdle)
	}
	if cfg.WebSocket.IdleTimeout.Duration() != 60*time.Second {
		t.Errorf("expected websocket idle_timeout 60s, got %s", cfg.WebSocket.IdleTimeout.Duration())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate cleanly: %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	yaml := `
server:
  address: "0.0.0.0:9090"
backend:
  kind: "socket"
  network: "tcp"
  address: "127.0.0.1:9001"
  max_idle: 64
logging:
  level: "debug"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "bridged.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Address != "0.0.0.0:9090" {
		t.Errorf("expected address 0.0.0.0:9090, got %s", cfg.Server.Address)
	}
	if cfg.Backend.Address != "127.0.0.1:9001" {
		t.Errorf("expected backend address 127.0.0.1:9001, got %s", cfg.Backend.Address)
	}
	if cfg.Backend.MaxIdle != 64 {
		t.Errorf("expected backend.max_idle 64, got %d", cfg.Backend.MaxIdle)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/bridged.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestValidateRejectsUnknownBackendKind(t *testing.T) {
	cfg := Default()
	cfg.Backend.Kind = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown backend kind")
	}
}

func TestValidateSocketBackendRequiresAddress(t *testing.T) {
	cfg := Default()
	cfg.Backend.Address = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing backend.address")
	}
}

func TestValidateDirectBackendRequiresDirectEnabled(t *testing.T) {
	cfg := Default()
	cfg.Backend.Kind = BackendDirect
	cfg.Direct.Enabled = false
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when backend.kind is direct but direct.enabled is false")
	}
	cfg.Direct.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected direct backend to validate once direct.enabled is true: %v", err)
	}
}

func TestValidateWebSocketPathRequired(t *testing.T) {
	cfg := Default()
	cfg.WebSocket.Enabled = true
	cfg.WebSocket.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for enabled websocket without a path")
	}
}

func TestValidateBenchmarkRequiresStatus(t *testing.T) {
	cfg := Default()
	cfg.Benchmark.Enabled = true
	cfg.Benchmark.Status = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for benchmark mode without a status")
	}
}

func TestValidateBenchmarkFixturePathSkipsStatusRequirement(t *testing.T) {
	cfg := Default()
	cfg.Benchmark.Enabled = true
	cfg.Benchmark.Status = 0
	cfg.Benchmark.FixturePath = "/tmp/fixture.msgpack"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected benchmark mode with a fixture_path to validate without status: %v", err)
	}
}

func TestLoadReloadManifestPath(t *testing.T) {
	yaml := `
server:
  address: "0.0.0.0:9090"
backend:
  kind: "socket"
  network: "tcp"
  address: "127.0.0.1:9001"
  max_idle: 64
  reload_manifest_path: "/var/run/bridged/reload.manifest"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "bridged.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend.ReloadManifestPath != "/var/run/bridged/reload.manifest" {
		t.Errorf("expected reload_manifest_path to round trip, got %q", cfg.Backend.ReloadManifestPath)
	}
}
