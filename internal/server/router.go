package server

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sadewadee/bridged/internal/config"
	"github.com/sadewadee/bridged/internal/frontend"
)

// Router dispatches incoming HTTP requests to the appropriate handler:
// health checks, static files, or the bridge front door.
type Router struct {
	cfg           *config.Config
	logger        *slog.Logger
	static        http.Handler
	bridge        *frontend.Handler
	healthHandler *HealthHandler
}

// NewRouter creates a new request router.
func NewRouter(cfg *config.Config, bridge *frontend.Handler, stats BridgeStats, logger *slog.Logger) *Router {
	r := &Router{
		cfg:    cfg,
		logger: logger,
		bridge: bridge,
	}

	if cfg.Static.Root != "" {
		r.static = NewStaticHandler(cfg.Static.Root, cfg.Static.CacheControl)
	}

	r.healthHandler = NewHealthHandler(stats)

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/health", "/healthz", "/ready", "/readyz":
		r.healthHandler.ServeHTTP(w, req)
		return
	}

	if r.static != nil && r.isStaticFile(req.URL.Path) {
		r.static.ServeHTTP(w, req)
		return
	}

	r.bridge.ServeHTTP(w, req)
}

func (r *Router) isStaticFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
		".woff", ".woff2", ".ttf", ".eot", ".map", ".webp", ".avif",
		".mp4", ".webm", ".pdf", ".txt", ".xml", ".json":
		return true
	}
	return false
}
