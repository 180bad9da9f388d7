package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/rs/zerolog/log"

	"avtopology/internal/models"
)

// zoneEventRetry is the reconnect delay suggested to clients, in milliseconds.
const zoneEventRetry = 3000

// handleZoneEvents streams zone snapshots as "zones" events. With ?zone=<udn>
// the stream follows one zone instead: a "zone" event whenever its state
// changes, a keepalive comment on unchanged heartbeats, and a final
// "removed" event if the zone goes away.
func (s *Server) handleZoneEvents(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "monitor not configured")
		return
	}

	udn := r.URL.Query().Get("zone")
	if udn != "" {
		if _, ok := s.monitor.Zone(udn); !ok {
			writeDomainError(w, fmt.Errorf("zone %s: %w", udn, models.ErrNotFound))
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.monitor.Subscribe()
	defer s.monitor.Unsubscribe(ch)

	zs := &zoneStream{w: w, flusher: flusher, udn: udn}
	fmt.Fprintf(w, "retry: %d\n\n", zoneEventRetry)
	if !zs.send(s.monitor.Current()) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case zones, ok := <-ch:
			if !ok || !zs.send(zones) {
				return
			}
		}
	}
}

type zoneStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	udn     string
	seq     uint64
	last    *models.ZoneState
}

// send writes the event for one snapshot. It returns false once the
// followed zone is gone.
func (zs *zoneStream) send(zones []models.ZoneState) bool {
	defer zs.flusher.Flush()

	if zs.udn == "" {
		zs.event("zones", zones)
		return true
	}

	i := slices.IndexFunc(zones, func(z models.ZoneState) bool { return z.Udn == zs.udn })
	if i < 0 {
		zs.event("removed", map[string]string{"udn": zs.udn})
		return false
	}
	if zs.last != nil && *zs.last == zones[i] {
		fmt.Fprint(zs.w, ": keepalive\n\n")
		return true
	}
	z := zones[i]
	zs.last = &z
	zs.event("zone", z)
	return true
}

func (zs *zoneStream) event(name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "server").Str("event", name).Msg("encoding zone event")
		return
	}
	zs.seq++
	fmt.Fprintf(zs.w, "id: %d\nevent: %s\ndata: %s\n\n", zs.seq, name, data)
}
