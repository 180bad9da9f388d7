// Package radio implements the radio capability: a fixed set of preset
// channels, one of which is tuned.
package radio

import (
	"fmt"
	"slices"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/watch"
)

const Kind = models.ServiceRadio

// Channel is one radio preset. Id 0 is reserved for "no channel".
type Channel struct {
	Id       uint32 `json:"id"`
	Uri      string `json:"uri"`
	Metadata string `json:"metadata"`
}

type Config struct {
	Id             uint32
	Channels       []Channel
	TransportState string
	ChannelsMax    uint32
	ProtocolInfo   string
}

func DefaultConfig() Config {
	return Config{
		TransportState: models.TransportStateStopped,
		ChannelsMax:    100,
		ProtocolInfo:   "http-get:*:audio/mpeg:*",
	}
}

type backend interface {
	play() future.Future[struct{}]
	pause() future.Future[struct{}]
	stop() future.Future[struct{}]
	seekSecondAbsolute(s uint32) future.Future[struct{}]
	seekSecondRelative(s int32) future.Future[struct{}]
	setId(id uint32, uri string) future.Future[struct{}]
	setChannel(uri, metadata string) future.Future[struct{}]
	read(id uint32) future.Future[Channel]
	readList(ids []uint32) future.Future[[]Channel]
	execute(cmd script.Command) error
}

type Service struct {
	service.Base
	backend backend

	id             *watch.Value[uint32]
	idArray        *watch.Value[[]uint32]
	transportState *watch.Value[string]
	metadata       *watch.Value[string]
	uri            *watch.Value[string]

	channelsMax  uint32
	protocolInfo string
}

func newService(d *service.Device, cfg Config) *Service {
	s := d.Scheduler()
	id := func(name string) string {
		return fmt.Sprintf("%s(%s)", name, d.Udn())
	}
	ids := make([]uint32, len(cfg.Channels))
	var current Channel
	for i, c := range cfg.Channels {
		ids[i] = c.Id
		if c.Id == cfg.Id {
			current = c
		}
	}
	return &Service{
		id:             watch.New(s, id("Id"), cfg.Id),
		idArray:        watch.NewFunc(s, id("IdArray"), ids, slices.Equal[[]uint32]),
		transportState: watch.New(s, id("TransportState"), cfg.TransportState),
		metadata:       watch.New(s, id("Metadata"), current.Metadata),
		uri:            watch.New(s, id("Uri"), current.Uri),
		channelsMax:    cfg.ChannelsMax,
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
	s.metadata.Dispose()
	s.uri.Dispose()
}

type Proxy struct {
	*service.Handle
	svc *Service
}

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

// Metadata describes the tuned channel.
func (p *Proxy) Metadata() watch.Watchable[string] {
	p.Check("Metadata")
	return p.svc.metadata
}

func (p *Proxy) Uri() watch.Watchable[string] {
	p.Check("Uri")
	return p.svc.uri
}

func (p *Proxy) ChannelsMax() uint32 {
	p.Check("ChannelsMax")
	return p.svc.channelsMax
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

func (p *Proxy) SeekSecondAbsolute(s uint32) future.Future[struct{}] {
	p.Check("SeekSecondAbsolute")
	return p.svc.backend.seekSecondAbsolute(s)
}

func (p *Proxy) SeekSecondRelative(s int32) future.Future[struct{}] {
	p.Check("SeekSecondRelative")
	return p.svc.backend.seekSecondRelative(s)
}

// SetId tunes to a preset.
func (p *Proxy) SetId(id uint32, uri string) future.Future[struct{}] {
	p.Check("SetId")
	return p.svc.backend.setId(id, uri)
}

// SetChannel tunes to an arbitrary stream that is not a preset.
func (p *Proxy) SetChannel(uri, metadata string) future.Future[struct{}] {
	p.Check("SetChannel")
	return p.svc.backend.setChannel(uri, metadata)
}

func (p *Proxy) Read(id uint32) future.Future[Channel] {
	p.Check("Read")
	return p.svc.backend.read(id)
}

func (p *Proxy) ReadList(ids []uint32) future.Future[[]Channel] {
	p.Check("ReadList")
	return p.svc.backend.readList(ids)
}

var _ service.Service = (*Service)(nil)
var _ service.Proxy = (*Proxy)(nil)
