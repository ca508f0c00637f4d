package web

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// WithDevCORS lets a UI served from another origin (e.g. a local dev
// server) call the API. Only used when ServerConfig.DevMode is enabled.
func WithDevCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newUpgrader returns the websocket upgrader. Outside dev mode gorilla's
// same-origin check applies.
func newUpgrader(devMode bool) *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	if devMode {
		u.CheckOrigin = func(*http.Request) bool { return true }
	}
	return u
}
