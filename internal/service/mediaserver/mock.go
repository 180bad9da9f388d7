package mediaserver

import (
	"fmt"
	"slices"
	"strings"

	"avtopology/internal/future"
	"avtopology/internal/media"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
)

// NewMock serves cfg.Tracks. Tracks with an album and no artwork get an
// artwork URI under cfg.ArtworkBase.
func NewMock(d *service.Device, tm *media.TagManager, cfg Config) *Service {
	s := newService(d, tm, cfg)
	m := &mock{svc: s, tm: tm}
	for _, t := range cfg.Tracks {
		if _, ok := t.Get(tm.Audio.Artwork); !ok && cfg.ArtworkBase != "" {
			if uri, ok := media.ArtworkURI(cfg.ArtworkBase, tm, t); ok {
				t.Add(tm.Audio.Artwork, uri)
			}
		}
		m.tracks = append(m.tracks, media.NewDatum(t))
	}
	m.root = m.rootMenu()
	s.backend = m
	s.Base = service.NewBase(d, Kind, service.MockSubscriber{}, s.newProxy)
	return s
}

type mock struct {
	svc    *Service
	tm     *media.TagManager
	tracks []*media.Datum
	root   []*media.Datum
}

func (m *mock) rootMenu() []*media.Datum {
	node := func(title string, types ...*media.Tag) *media.Datum {
		md := media.NewMetadata()
		md.Add(m.tm.Container.Title, title)
		return media.NewDatum(md, append([]*media.Tag{m.tm.Container.Title}, types...)...)
	}
	return []*media.Datum{
		node("Tracks"),
		node("Artists", m.tm.Audio.Artist, m.tm.Audio.Album),
		node("Albums", m.tm.Audio.Album),
		node("Genre", m.tm.Audio.Genre),
	}
}

func (m *mock) browse(d *media.Datum) future.Future[result] {
	return future.Resolved(m.list(d), nil)
}

func (m *mock) list(d *media.Datum) result {
	if d == nil {
		return result{data: m.root}
	}
	types := d.Types()
	if types[0] == m.tm.Container.Title && len(types) > 1 {
		switch types[1] {
		case m.tm.Audio.Artist:
			artists := m.artists()
			return result{data: artists, alpha: media.Alpha(artists, m.tm.Audio.Artist)}
		case m.tm.Audio.Album, m.tm.Audio.Genre:
			return result{data: m.tracks}
		default:
			panic(fmt.Sprintf("mediaserver: Browse: cannot enumerate by %s", types[1]))
		}
	}
	return result{data: m.tracks}
}

// artists lists one datum per distinct primary artist, sorted.
func (m *mock) artists() []*media.Datum {
	var names []string
	for _, t := range m.tracks {
		if v, ok := t.Get(m.tm.Audio.Artist); ok {
			names = append(names, v.Primary())
		}
	}
	slices.Sort(names)
	names = slices.Compact(names)

	out := make([]*media.Datum, len(names))
	for i, name := range names {
		md := media.NewMetadata()
		md.Add(m.tm.Audio.Artist, name)
		out[i] = media.NewDatum(md, m.tm.Audio.Artist, m.tm.Audio.Album)
	}
	return out
}

func (m *mock) artwork(album string) (Artwork, error) {
	i := slices.IndexFunc(m.tracks, func(t *media.Datum) bool {
		return t.Primary(m.tm.Audio.Album) == album
	})
	if i < 0 {
		return Artwork{}, fmt.Errorf("album %q: %w", album, models.ErrNotFound)
	}
	first := m.tracks[i]
	artist, ok := first.Get(m.tm.Audio.AlbumArtist)
	if !ok {
		return Artwork{}, fmt.Errorf("album %q has no album artist: %w", album, models.ErrNotFound)
	}
	title, ok := first.Get(m.tm.Audio.AlbumTitle)
	if !ok {
		return Artwork{}, fmt.Errorf("album %q has no album title: %w", album, models.ErrNotFound)
	}
	return Artwork{Artist: artist.Primary(), Title: title.Primary()}, nil
}

func (m *mock) execute(cmd script.Command) error {
	switch cmd.Name {
	case "attributes":
		m.svc.attributes = strings.Fields(cmd.Text())
	case "productname":
		m.svc.product.Name = cmd.Text()
	default:
		return script.Unsupported(cmd)
	}
	return nil
}
