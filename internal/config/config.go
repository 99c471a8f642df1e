package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete bridge server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Direct    DirectConfig    `yaml:"direct"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Static    StaticConfig    `yaml:"static"`
	Logging   LogConfig       `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
}

type ServerConfig struct {
	Address      string    `yaml:"address"`
	HTTP2        bool      `yaml:"http2"`
	HTTP3        bool      `yaml:"http3"`
	TLS          TLSConfig `yaml:"tls"`
	HTTPRedirect bool      `yaml:"http_redirect"`
}

type TLSConfig struct {
	Auto bool       `yaml:"auto"`
	Cert string     `yaml:"cert"`
	Key  string     `yaml:"key"`
	ACME ACMEConfig `yaml:"acme"`
}

type ACMEConfig struct {
	Email    string   `yaml:"email"`
	Domains  []string `yaml:"domains"`
	CacheDir string   `yaml:"cache_dir"`
	Staging  bool     `yaml:"staging"`
}

// BackendKind selects which bridge transport carries requests to the
// application runtime.
type BackendKind string

const (
	BackendSocket BackendKind = "socket"
	BackendDirect BackendKind = "direct"
)

// BackendConfig describes the socket bridge transport: where the
// application runtime listens, and how many idle connections the pool
// is allowed to keep warm.
type BackendConfig struct {
	Kind    BackendKind `yaml:"kind"`    // socket or direct
	Network string      `yaml:"network"` // tcp or unix
	Address string      `yaml:"address"` // host:port, or a unix socket path
	MaxIdle int         `yaml:"max_idle"`

	// ReloadManifestPath, when set, is the msgpack reload.Manifest file
	// read on SIGUSR1 to swap the socket pool's endpoint without a
	// restart. Empty disables the reload signal.
	ReloadManifestPath string `yaml:"reload_manifest_path"`
}

// DirectConfig toggles the in-process direct-callback transport. It
// carries no connection details, since direct mode means the host
// runtime is embedded in this same process and reachable by a direct
// function call rather than a socket.
type DirectConfig struct {
	Enabled bool `yaml:"enabled"`
}

type WebSocketConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Path           string   `yaml:"path"`
	MaxConnections int      `yaml:"max_connections"`
	IdleTimeout    Duration `yaml:"idle_timeout"`
}

type StaticConfig struct {
	Root         string `yaml:"root"`
	CacheControl string `yaml:"cache_control"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BenchmarkConfig enables the front door's canned-response short circuit,
// used to measure HTTP-handling overhead in isolation from either bridge
// transport.
type BenchmarkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Status  int    `yaml:"status"`
	Body    string `yaml:"body"`

	// FixturePath, when set, loads the canned response from an on-disk
	// msgpack benchfixture.Fixture instead of Status/Body, for larger or
	// binary fixtures than fit comfortably in YAML.
	FixturePath string `yaml:"fixture_path"`
}

// Duration is a time.Duration that supports YAML string unmarshaling.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads config from a YAML file, applying defaults for missing values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	if c.Backend.Kind != BackendSocket && c.Backend.Kind != BackendDirect {
		return fmt.Errorf("backend.kind must be %q or %q, got %q", BackendSocket, BackendDirect, c.Backend.Kind)
	}
	if c.Backend.Kind == BackendSocket {
		if c.Backend.Network != "tcp" && c.Backend.Network != "unix" {
			return fmt.Errorf("backend.network must be 'tcp' or 'unix', got %q", c.Backend.Network)
		}
		if c.Backend.Address == "" {
			return fmt.Errorf("backend.address is required for the socket transport")
		}
		if c.Backend.MaxIdle < 0 {
			return fmt.Errorf("backend.max_idle must be >= 0, got %d", c.Backend.MaxIdle)
		}
	}
	if c.Backend.Kind == BackendDirect && !c.Direct.Enabled {
		return fmt.Errorf("direct.enabled must be true when backend.kind is %q", BackendDirect)
	}

	if c.WebSocket.Enabled && c.WebSocket.Path == "" {
		return fmt.Errorf("websocket.path is required when websocket is enabled")
	}

	if c.Benchmark.Enabled && c.Benchmark.FixturePath == "" && c.Benchmark.Status == 0 {
		return fmt.Errorf("benchmark.status must be set when benchmark mode is enabled without a fixture_path")
	}

	return nil
}
