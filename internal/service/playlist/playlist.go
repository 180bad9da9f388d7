// Package playlist implements the playlist capability: an ordered list of
// tracks identified by id, with transport control over it.
package playlist

import (
	"fmt"
	"slices"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/watch"
)

const Kind = models.ServicePlaylist

// Track is one playlist entry.
type Track struct {
	Id       uint32 `json:"id"`
	Uri      string `json:"uri"`
	Metadata string `json:"metadata"`
}

// Config holds the starting state of a mock playlist.
type Config struct {
	Id             uint32
	Tracks         []Track
	Repeat         bool
	Shuffle        bool
	TransportState string
	ProtocolInfo   string
	TracksMax      uint32
}

func DefaultConfig() Config {
	return Config{
		TransportState: models.TransportStateStopped,
		ProtocolInfo:   "http-get:*:audio/x-flac:*,http-get:*:audio/mpeg:*",
		TracksMax:      1000,
	}
}

type backend interface {
	play() future.Future[struct{}]
	pause() future.Future[struct{}]
	stop() future.Future[struct{}]
	previous() future.Future[struct{}]
	next() future.Future[struct{}]
	seekId(id uint32) future.Future[struct{}]
	seekIndex(index uint32) future.Future[struct{}]
	seekSecondAbsolute(s uint32) future.Future[struct{}]
	seekSecondRelative(s int32) future.Future[struct{}]
	insert(afterId uint32, uri, metadata string) future.Future[uint32]
	deleteId(id uint32) future.Future[struct{}]
	deleteAll() future.Future[struct{}]
	setRepeat(v bool) future.Future[struct{}]
	setShuffle(v bool) future.Future[struct{}]
	read(id uint32) future.Future[Track]
	readList(ids []uint32) future.Future[[]Track]
	execute(cmd script.Command) error
}

type Service struct {
	service.Base
	backend backend

	id             *watch.Value[uint32]
	idArray        *watch.Value[[]uint32]
	transportState *watch.Value[string]
	repeat         *watch.Value[bool]
	shuffle        *watch.Value[bool]

	tracksMax    uint32
	protocolInfo string
}

func newService(d *service.Device, cfg Config) *Service {
	s := d.Scheduler()
	id := func(name string) string {
		return fmt.Sprintf("%s(%s)", name, d.Udn())
	}
	ids := make([]uint32, len(cfg.Tracks))
	for i, t := range cfg.Tracks {
		ids[i] = t.Id
	}
	return &Service{
		id:             watch.New(s, id("Id"), cfg.Id),
		idArray:        watch.NewFunc(s, id("IdArray"), ids, slices.Equal[[]uint32]),
		transportState: watch.New(s, id("TransportState"), cfg.TransportState),
		repeat:         watch.New(s, id("Repeat"), cfg.Repeat),
		shuffle:        watch.New(s, id("Shuffle"), cfg.Shuffle),
		tracksMax:      cfg.TracksMax,
		protocolInfo:   cfg.ProtocolInfo,
	}
}

func (s *Service) newProxy(h *service.Handle) service.Proxy {
	return &Proxy{Handle: h, svc: s}
}

func (s *Service) Execute(cmd script.Command) error {
	return s.backend.execute(cmd)
}

func (s *Service) Dispose() {
	s.Base.Dispose()

	s.id.Dispose()
	s.idArray.Dispose()
	s.transportState.Dispose()
	s.repeat.Dispose()
	s.shuffle.Dispose()
}

type Proxy struct {
	*service.Handle
	svc *Service
}

// Id is the id of the current track, 0 when none.
func (p *Proxy) Id() watch.Watchable[uint32] {
	p.Check("Id")
	return p.svc.id
}

func (p *Proxy) IdArray() watch.Watchable[[]uint32] {
	p.Check("IdArray")
	return p.svc.idArray
}

func (p *Proxy) TransportState() watch.Watchable[string] {
	p.Check("TransportState")
	return p.svc.transportState
}

func (p *Proxy) Repeat() watch.Watchable[bool] {
	p.Check("Repeat")
	return p.svc.repeat
}

func (p *Proxy) Shuffle() watch.Watchable[bool] {
	p.Check("Shuffle")
	return p.svc.shuffle
}

func (p *Proxy) TracksMax() uint32 {
	p.Check("TracksMax")
	return p.svc.tracksMax
}

func (p *Proxy) ProtocolInfo() string {
	p.Check("ProtocolInfo")
	return p.svc.protocolInfo
}

func (p *Proxy) Play() future.Future[struct{}] {
	p.Check("Play")
	return p.svc.backend.play()
}

func (p *Proxy) Pause() future.Future[struct{}] {
	p.Check("Pause")
	return p.svc.backend.pause()
}

func (p *Proxy) Stop() future.Future[struct{}] {
	p.Check("Stop")
	return p.svc.backend.stop()
}

func (p *Proxy) Previous() future.Future[struct{}] {
	p.Check("Previous")
	return p.svc.backend.previous()
}

func (p *Proxy) Next() future.Future[struct{}] {
	p.Check("Next")
	return p.svc.backend.next()
}

func (p *Proxy) SeekId(id uint32) future.Future[struct{}] {
	p.Check("SeekId")
	return p.svc.backend.seekId(id)
}

func (p *Proxy) SeekIndex(index uint32) future.Future[struct{}] {
	p.Check("SeekIndex")
	return p.svc.backend.seekIndex(index)
}

func (p *Proxy) SeekSecondAbsolute(s uint32) future.Future[struct{}] {
	p.Check("SeekSecondAbsolute")
	return p.svc.backend.seekSecondAbsolute(s)
}

func (p *Proxy) SeekSecondRelative(s int32) future.Future[struct{}] {
	p.Check("SeekSecondRelative")
	return p.svc.backend.seekSecondRelative(s)
}

// Insert adds a track after afterId (0 inserts at the start) and resolves
// with the new track's id.
func (p *Proxy) Insert(afterId uint32, uri, metadata string) future.Future[uint32] {
	p.Check("Insert")
	return p.svc.backend.insert(afterId, uri, metadata)
}

func (p *Proxy) DeleteId(id uint32) future.Future[struct{}] {
	p.Check("DeleteId")
	return p.svc.backend.deleteId(id)
}

func (p *Proxy) DeleteAll() future.Future[struct{}] {
	p.Check("DeleteAll")
	return p.svc.backend.deleteAll()
}

func (p *Proxy) SetRepeat(v bool) future.Future[struct{}] {
	p.Check("SetRepeat")
	return p.svc.backend.setRepeat(v)
}

func (p *Proxy) SetShuffle(v bool) future.Future[struct{}] {
	p.Check("SetShuffle")
	return p.svc.backend.setShuffle(v)
}

func (p *Proxy) Read(id uint32) future.Future[Track] {
	p.Check("Read")
	return p.svc.backend.read(id)
}

func (p *Proxy) ReadList(ids []uint32) future.Future[[]Track] {
	p.Check("ReadList")
	return p.svc.backend.readList(ids)
}

var _ service.Service = (*Service)(nil)
var _ service.Proxy = (*Proxy)(nil)
