package playlist

import (
	"encoding/json"
	"fmt"
	"strconv"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/transport"
)

func NewNetwork(d *service.Device, c transport.Client) *Service {
	s := newService(d, Config{})
	s.backend = &network{client: c, udn: d.Udn()}
	s.Base = service.NewBase(d, Kind, &service.NetworkSubscriber{
		Client:  c,
		Sched:   d.Scheduler(),
		Udn:     d.Udn(),
		Service: string(Kind),
		Apply:   s.apply,
	}, s.newProxy)
	return s
}

func (s *Service) apply(raw map[string]string) {
	p := service.Props(raw)
	p.Uint("Id", s.id.Update)
	p.Uints("IdArray", s.idArray.Update)
	p.Text("TransportState", s.transportState.Update)
	p.Bool("Repeat", s.repeat.Update)
	p.Bool("Shuffle", s.shuffle.Update)
	p.Uint("TracksMax", func(v uint32) { s.tracksMax = v })
	p.Text("ProtocolInfo", func(v string) { s.protocolInfo = v })
}

type network struct {
	client transport.Client
	udn    string
}

func (n *network) call(action string, args map[string]string) future.Future[struct{}] {
	return service.Call(n.client, n.udn, Kind, action, args)
}

func value[T int32 | uint32](v T) map[string]string {
	return map[string]string{"Value": fmt.Sprint(v)}
}

func (n *network) play() future.Future[struct{}]     { return n.call("Play", nil) }
func (n *network) pause() future.Future[struct{}]    { return n.call("Pause", nil) }
func (n *network) stop() future.Future[struct{}]     { return n.call("Stop", nil) }
func (n *network) previous() future.Future[struct{}] { return n.call("Previous", nil) }
func (n *network) next() future.Future[struct{}]     { return n.call("Next", nil) }

func (n *network) seekId(id uint32) future.Future[struct{}] {
	return n.call("SeekId", value(id))
}

func (n *network) seekIndex(index uint32) future.Future[struct{}] {
	return n.call("SeekIndex", value(index))
}

func (n *network) seekSecondAbsolute(s uint32) future.Future[struct{}] {
	return n.call("SeekSecondAbsolute", value(s))
}

func (n *network) seekSecondRelative(s int32) future.Future[struct{}] {
	return n.call("SeekSecondRelative", value(s))
}

func (n *network) insert(afterId uint32, uri, metadata string) future.Future[uint32] {
	out := service.Invoke(n.client, n.udn, Kind, "Insert", map[string]string{
		"AfterId":  strconv.FormatUint(uint64(afterId), 10),
		"Uri":      uri,
		"Metadata": metadata,
	})
	return future.Map(out, func(out map[string]string) (uint32, error) {
		id, err := strconv.ParseUint(out["NewId"], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s playlist.Insert: NewId %q: %w", n.udn, out["NewId"], err)
		}
		return uint32(id), nil
	})
}

func (n *network) deleteId(id uint32) future.Future[struct{}] {
	return n.call("DeleteId", value(id))
}

func (n *network) deleteAll() future.Future[struct{}] {
	return n.call("DeleteAll", nil)
}

func (n *network) setRepeat(v bool) future.Future[struct{}] {
	return n.call("SetRepeat", map[string]string{"Value": strconv.FormatBool(v)})
}

func (n *network) setShuffle(v bool) future.Future[struct{}] {
	return n.call("SetShuffle", map[string]string{"Value": strconv.FormatBool(v)})
}

func (n *network) read(id uint32) future.Future[Track] {
	out := service.Invoke(n.client, n.udn, Kind, "Read", map[string]string{"Id": strconv.FormatUint(uint64(id), 10)})
	return future.Map(out, func(out map[string]string) (Track, error) {
		return Track{Id: id, Uri: out["Uri"], Metadata: out["Metadata"]}, nil
	})
}

// readList expects the bridge to return the tracks as a JSON array.
func (n *network) readList(ids []uint32) future.Future[[]Track] {
	out := service.Invoke(n.client, n.udn, Kind, "ReadList", map[string]string{"IdList": service.FormatUints(ids)})
	return future.Map(out, func(out map[string]string) ([]Track, error) {
		var tracks []Track
		if err := json.Unmarshal([]byte(out["TrackList"]), &tracks); err != nil {
			return nil, fmt.Errorf("%s playlist.ReadList: decoding TrackList: %w", n.udn, err)
		}
		return tracks, nil
	})
}

func (n *network) execute(script.Command) error {
	return fmt.Errorf("%s playlist: scripting a network service: %w", n.udn, models.ErrNotSupported)
}
