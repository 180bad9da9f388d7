package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed web
var webFS embed.FS

// serveDashboard serves the zone dashboard page and its assets. Anything
// else, including unknown /api paths, is not found.
func (s *Server) serveDashboard() {
	assets, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	files := http.FileServer(http.FS(assets))

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasPrefix(r.URL.Path, "/api") || name == "index.html" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if _, err := fs.Stat(assets, name); err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		files.ServeHTTP(w, r)
	})
}
