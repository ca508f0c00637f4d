package web

import (
	"net/http"

	"github.com/rook-computer/scratchcard/internal/config"
)

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - real device: :80
// - simulator:   :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	StaticDir  string
}

// ServerConfigFrom picks the web settings out of the loaded config, which
// already carries the SCRATCHCARD_LISTEN and SCRATCHCARD_DEV overrides.
func ServerConfigFrom(cfg config.Config) ServerConfig {
	return ServerConfig{
		ListenAddr: cfg.Web.ListenAddr,
		DevMode:    cfg.Web.DevMode,
		StaticDir:  cfg.Web.StaticDir,
	}
}

// Handler builds the router for svc, wrapped in dev CORS when enabled.
func (c ServerConfig) Handler(svc CardService, logger Logger) http.Handler {
	return NewRouter(svc, c.StaticDir, c.DevMode, logger)
}
