package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "monitor not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.monitor.Current())
}

func (s *Server) handleTransport(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "monitor not configured")
		return
	}
	if err := s.monitor.Transport(r.Context(), chi.URLParam(r, "udn"), chi.URLParam(r, "op")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
