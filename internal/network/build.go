package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"avtopology/internal/config"
	"avtopology/internal/media"
	"avtopology/internal/scheduler"
	"avtopology/internal/service"
	"avtopology/internal/service/mediaserver"
	"avtopology/internal/transport"
)

const playlistSeed = 5

// Build creates the configured devices. Each mock media server loads its
// own copy of the library, concurrently; the devices are then added on the
// scheduler, which must be running. client may be nil when no device is
// remote.
func Build(ctx context.Context, s scheduler.Scheduler, cfg *config.Config, client transport.Client) (*Network, error) {
	tm := media.NewTagManager()
	libCfg := media.LibraryConfig{
		Backend: media.Backend(cfg.Library.Backend),
		Fixture: cfg.Library.Fixture,
		DBPath:  cfg.Library.DBPath,
	}

	for _, dc := range cfg.Devices {
		if dc.Remote && client == nil {
			return nil, fmt.Errorf("device %s is remote but no bridge is configured", dc.Udn)
		}
	}

	tracks := make([][]*media.Metadata, len(cfg.Devices))
	g, gctx := errgroup.WithContext(ctx)
	for i, dc := range cfg.Devices {
		if dc.Remote || (dc.Kind != config.DeviceKindMediaServer && i != firstDs(cfg)) {
			continue
		}
		g.Go(func() error {
			lib, err := media.NewLibrary(gctx, libCfg)
			if err != nil {
				return fmt.Errorf("device %s: %w", dc.Udn, err)
			}
			defer lib.Close()
			t, err := lib.Load(gctx, tm)
			if err != nil {
				return fmt.Errorf("device %s: loading library: %w", dc.Udn, err)
			}
			tracks[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var seed []*media.Metadata
	if i := firstDs(cfg); i >= 0 {
		seed = tracks[i][:min(playlistSeed, len(tracks[i]))]
	}

	devices := make([]*service.Device, 0, len(cfg.Devices))
	for i, dc := range cfg.Devices {
		devices = append(devices, newDevice(s, tm, cfg, dc, tracks[i], seed, client))
	}

	n := New(s, tm)
	s.Execute(func() {
		for _, d := range devices {
			n.Add(d)
		}
	})
	log.Info().Str("module", "network").Int("devices", len(devices)).Msg("network built")
	return n, nil
}

// firstDs is the index of the first mock streamer, whose library copy seeds
// every mock playlist, or -1.
func firstDs(cfg *config.Config) int {
	for i, dc := range cfg.Devices {
		if dc.Kind == config.DeviceKindDs && !dc.Remote {
			return i
		}
	}
	return -1
}

func newDevice(s scheduler.Scheduler, tm *media.TagManager, cfg *config.Config, dc config.DeviceConfig, tracks, seed []*media.Metadata, client transport.Client) *service.Device {
	artworkBase := strings.TrimSuffix(cfg.PublicURL, "/") + "/api/media/" + dc.Udn

	switch {
	case dc.Kind == config.DeviceKindMediaServer && dc.Remote:
		return NewNetworkMediaServer(s, tm, dc.Udn, client, artworkBase)
	case dc.Kind == config.DeviceKindMediaServer:
		msCfg := mediaserver.DefaultConfig()
		msCfg.Tracks = tracks
		msCfg.ArtworkBase = artworkBase
		if dc.Name != "" {
			msCfg.Product.Name = dc.Name
		}
		return NewMockMediaServer(s, tm, dc.Udn, msCfg)
	case dc.Remote:
		return NewNetworkDs(s, dc.Udn, client)
	default:
		dsCfg := DefaultDsConfig(dc.Room, dc.Name)
		dsCfg.Volume.Max = cfg.Volume.Max
		dsCfg.Volume.Limit = cfg.Volume.Limit
		dsCfg.Volume.Unity = cfg.Volume.Unity
		dsCfg.Volume.Steps = cfg.Volume.Steps
		dsCfg.Volume.MilliDbPerStep = cfg.Volume.MilliDbPerStep
		dsCfg.Playlist.Tracks = PlaylistTracks(tm, seed)
		return NewMockDs(s, dc.Udn, dsCfg)
	}
}
