package network

import (
	"encoding/json"

	"avtopology/internal/media"
	"avtopology/internal/scheduler"
	"avtopology/internal/service"
	"avtopology/internal/service/mediaserver"
	"avtopology/internal/service/playlist"
	"avtopology/internal/service/product"
	"avtopology/internal/service/radio"
	"avtopology/internal/service/volume"
	"avtopology/internal/transport"
)

// DsConfig holds the starting state of a mock streamer.
type DsConfig struct {
	Product  product.Config
	Volume   volume.Config
	Playlist playlist.Config
	Radio    radio.Config
}

func DefaultDsConfig(room, name string) DsConfig {
	p := product.DefaultConfig()
	if room != "" {
		p.Room = room
	}
	if name != "" {
		p.Name = name
	}
	r := radio.DefaultConfig()
	r.Channels = []radio.Channel{
		{Id: 1, Uri: "http://streams.example.org/jazz24.mp3", Metadata: "Jazz24"},
		{Id: 2, Uri: "http://streams.example.org/fip.mp3", Metadata: "FIP"},
		{Id: 3, Uri: "http://streams.example.org/radio3.mp3", Metadata: "BBC Radio 3"},
	}
	return DsConfig{
		Product:  p,
		Volume:   volume.DefaultConfig(),
		Playlist: playlist.DefaultConfig(),
		Radio:    r,
	}
}

// NewMockDs builds a streamer with product, volume, playlist and radio
// services.
func NewMockDs(s scheduler.Scheduler, udn string, cfg DsConfig) *service.Device {
	d := service.NewDevice(s, udn)
	d.Add(product.NewMock(d, cfg.Product))
	d.Add(volume.NewMock(d, cfg.Volume))
	d.Add(playlist.NewMock(d, cfg.Playlist))
	d.Add(radio.NewMock(d, cfg.Radio))
	return d
}

// NewNetworkDs builds a streamer reached through c.
func NewNetworkDs(s scheduler.Scheduler, udn string, c transport.Client) *service.Device {
	d := service.NewDevice(s, udn)
	d.Add(product.NewNetwork(d, c))
	d.Add(volume.NewNetwork(d, c))
	d.Add(playlist.NewNetwork(d, c))
	d.Add(radio.NewNetwork(d, c))
	return d
}

func NewMockMediaServer(s scheduler.Scheduler, tm *media.TagManager, udn string, cfg mediaserver.Config) *service.Device {
	d := service.NewDevice(s, udn)
	d.Add(mediaserver.NewMock(d, tm, cfg))
	return d
}

func NewNetworkMediaServer(s scheduler.Scheduler, tm *media.TagManager, udn string, c transport.Client, artworkBase string) *service.Device {
	d := service.NewDevice(s, udn)
	d.Add(mediaserver.NewNetwork(d, tm, c, artworkBase))
	return d
}

// PlaylistTracks turns library tracks into playlist entries. Metadata is
// carried in its JSON form.
func PlaylistTracks(tm *media.TagManager, tracks []*media.Metadata) []playlist.Track {
	out := make([]playlist.Track, 0, len(tracks))
	for i, t := range tracks {
		b, err := json.Marshal(t)
		if err != nil {
			continue
		}
		out = append(out, playlist.Track{
			Id:       uint32(i + 1),
			Uri:      t.Primary(tm.Audio.Uri),
			Metadata: string(b),
		})
	}
	return out
}
