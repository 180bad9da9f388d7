package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthTimeout = 2 * time.Second

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(limitBody)
		r.Use(jsonContentType)
		r.Use(corsMiddleware(s.corsOrigin))

		r.Get("/devices", s.handleListDevices)
		r.With(rateLimit).Post("/devices/{udn}/execute", s.handleExecute)
		r.Get("/devices/{udn}/volume", s.handleGetVolume)

		r.Get("/zones", s.handleListZones)
		r.Get("/zones/events", s.handleZoneEvents)
		r.With(rateLimit).Post("/zones/{udn}/transport/{op}", s.handleTransport)

		r.Get("/media/{udn}/root", s.handleMediaRoot)
		r.Get("/media/{udn}/browse/*", s.handleMediaBrowse)
		r.Get("/media/{udn}/artwork/{album}", s.handleArtwork)
	})
}

// handleHealth reports whether the scheduler is still running units.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	done := make(chan struct{})
	s.net.Scheduler().Schedule(func() { close(done) })

	select {
	case <-done:
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	case <-time.After(healthTimeout):
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}
}
