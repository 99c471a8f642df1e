package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/sadewadee/bridged/internal/bridgepool"
)

var startTime = time.Now()

// BridgeStats reports readiness for whichever transport backs the
// server, so the health handler doesn't need to know which one is active.
type BridgeStats interface {
	Ready() bool
	Snapshot() map[string]any
}

// socketStats adapts a bridgepool.Pool to BridgeStats: the pool is
// considered ready while it currently holds a connection, in the hot slot
// or the idle list.
type socketStats struct {
	pool *bridgepool.Pool
}

func (s socketStats) Ready() bool {
	stats := s.pool.Stats()
	return stats.HotOccupied || stats.Idle > 0
}

func (s socketStats) Snapshot() map[string]any {
	stats := s.pool.Stats()
	return map[string]any{
		"transport": "socket",
		"hot":       stats.HotOccupied,
		"idle":      stats.Idle,
		"max_idle":  stats.MaxIdle,
	}
}

// directStats reports the in-process transport as always ready: there is
// no connection to warm up, only the host runtime embedded in this process.
type directStats struct{}

func (directStats) Ready() bool { return true }
func (directStats) Snapshot() map[string]any {
	return map[string]any{"transport": "direct"}
}

// NewSocketBridgeStats wraps a socket-transport pool for the health handler.
func NewSocketBridgeStats(pool *bridgepool.Pool) BridgeStats { return socketStats{pool: pool} }

// NewDirectBridgeStats reports the direct transport's (trivial) readiness.
func NewDirectBridgeStats() BridgeStats { return directStats{} }

// HealthHandler serves health check and readiness endpoints.
type HealthHandler struct {
	stats BridgeStats
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(stats BridgeStats) *HealthHandler {
	return &HealthHandler{stats: stats}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ready", "/readyz":
		h.readiness(w)
	default:
		h.liveness(w)
	}
}

func (h *HealthHandler) liveness(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(startTime).String(),
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter) {
	ready := h.stats.Ready()
	status := http.StatusOK
	statusStr := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		statusStr = "not_ready"
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         statusStr,
		"uptime":         time.Since(startTime).String(),
		"uptime_seconds": time.Since(startTime).Seconds(),
		"bridge":         h.stats.Snapshot(),
		"memory": map[string]interface{}{
			"alloc_mb":  mem.Alloc / 1024 / 1024,
			"sys_mb":    mem.Sys / 1024 / 1024,
			"gc_cycles": mem.NumGC,
		},
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	})
}
