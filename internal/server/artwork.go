package server

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"avtopology/internal/service/mediaserver"
)

const artworkSize = 256

// handleArtwork serves a generated cover for an album: two bands of colour
// derived from the album artist and the album title.
func (s *Server) handleArtwork(w http.ResponseWriter, r *http.Request) {
	album := chi.URLParam(r, "album")
	if r.URL.RawPath != "" {
		// routed on the escaped path
		if unescaped, err := url.PathUnescape(album); err == nil {
			album = unescaped
		}
	}
	if !isValidPathSegment(album) {
		writeError(w, http.StatusBadRequest, "invalid album")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), browseTimeout)
	defer cancel()

	var art mediaserver.Artwork
	err := s.withMediaServer(ctx, chi.URLParam(r, "udn"), func(p *mediaserver.Proxy) error {
		var err error
		s.net.Scheduler().Execute(func() { art, err = p.ArtworkIdentity(album) })
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cover(art)); err != nil {
		log.Error().Err(err).Str("module", "server").Str("album", album).Msg("encoding artwork")
		writeError(w, http.StatusInternalServerError, "encoding artwork")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func cover(art mediaserver.Artwork) image.Image {
	top, bottom := shade(art.Artist), shade(art.Title)
	img := image.NewRGBA(image.Rect(0, 0, artworkSize, artworkSize))
	for y := 0; y < artworkSize; y++ {
		c := top
		if y >= artworkSize*2/3 {
			c = bottom
		}
		for x := 0; x < artworkSize; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func shade(s string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	v := h.Sum32()
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func isValidPathSegment(s string) bool {
	return s != "" && s != "." && s != ".."
}
