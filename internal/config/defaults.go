package config

import "time"

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "0.0.0.0:8080",
			TLS:     TLSConfig{Auto: false},
			HTTP3:   false,
		},
		Backend: BackendConfig{
			Kind:    BackendSocket,
			Network: "tcp",
			Address: "127.0.0.1:9000",
			MaxIdle: 256,
		},
		Direct: DirectConfig{
			Enabled: false,
		},
		WebSocket: WebSocketConfig{
			Enabled:        false,
			Path:           "/ws",
			MaxConnections: 10000,
			IdleTimeout:    Duration(60 * time.Second),
		},
		Static: StaticConfig{
			Root:         "public",
			CacheControl: "public, max-age=3600",
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Benchmark: BenchmarkConfig{
			Enabled: false,
			Status:  200,
			Body:    "ok",
		},
	}
}
