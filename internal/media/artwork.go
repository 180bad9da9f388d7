package media

import (
	"net/url"
	"strings"
)

// ArtworkURI derives the artwork location of a track from its album tag.
// Tracks without an album have no artwork.
func ArtworkURI(base string, tm *TagManager, m *Metadata) (string, bool) {
	album, ok := m.Get(tm.Audio.Album)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(base, "/") + "/artwork/" + url.PathEscape(album.Primary()), true
}
