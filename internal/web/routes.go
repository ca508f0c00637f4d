package web

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rook-computer/scratchcard/internal/assets"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// NewRouter builds the standard router used by both the device and simulator:
// - /api/v1/* for the API
// - / for the web UI
func NewRouter(svc CardService, staticDir string, devMode bool, logger Logger) http.Handler {
	if logger == nil {
		logger = noopLogger{}
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
		RegisterAPIV1(r, svc, logger, devMode)
	})
	r.Handle("/*", StaticUIHandler(staticDir))
	if devMode {
		return WithDevCORS(r)
	}
	return r
}

// RegisterAPIV1 registers the card API routes on r.
func RegisterAPIV1(r chi.Router, svc CardService, logger Logger, devMode bool) {
	r.Get("/state", handleState(svc))
	r.Get("/card.png", handleCardPNG(svc))
	r.Get("/page.png", handlePagePNG(svc))
	r.Get("/qr.png", handleQRPNG(svc))
	r.Post("/pointer", handlePointer(svc))
	r.Post("/reset", handleReset(svc))
	r.Get("/ws", handleWebsocket(svc, logger, newUpgrader(devMode)))
}

// StaticUIHandler serves either embedded UI assets or a directory.
func StaticUIHandler(dir string) http.Handler {
	if dir == "" {
		return cleanPath(http.FileServer(http.FS(assets.WebUI)))
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return http.NotFoundHandler()
	}
	return cleanPath(http.FileServer(http.Dir(dir)))
}

func cleanPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		next.ServeHTTP(w, r)
	})
}
