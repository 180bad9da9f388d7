package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"avtopology/internal/models"
)

type deviceInfo struct {
	Udn      string               `json:"udn"`
	Services []models.ServiceKind `json:"services"`
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	var out []deviceInfo
	s.net.Scheduler().Execute(func() {
		for _, udn := range s.net.Devices().Value() {
			if d, ok := s.net.Device(udn); ok {
				out = append(out, deviceInfo{Udn: udn, Services: d.Kinds()})
			}
		}
	})
	if out == nil {
		out = []deviceInfo{}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExecute runs one scripting command, given as the plain text body,
// against a device: "<service> <command> <values...>".
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	udn := chi.URLParam(r, "udn")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading command")
		return
	}
	line := strings.TrimSpace(string(body))
	if line == "" || strings.ContainsAny(line, "\r\n") {
		writeError(w, http.StatusBadRequest, "expected a single command line")
		return
	}

	s.net.Scheduler().Execute(func() {
		err = s.net.Execute(udn + " " + line)
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			err = fmt.Errorf("%w: %w", models.ErrNotSupported, err)
		}
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type volumeState struct {
	Volume uint32 `json:"volume"`
	Mute   bool   `json:"mute"`
}

func (s *Server) handleGetVolume(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "monitor not configured")
		return
	}
	z, ok := s.monitor.Zone(chi.URLParam(r, "udn"))
	if !ok {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	writeJSON(w, http.StatusOK, volumeState{Volume: z.Volume, Mute: z.Mute})
}
