// Package volume implements the volume capability of a renderer.
package volume

import (
	"fmt"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/watch"
)

// Config holds the starting values of a mock volume service.
type Config struct {
	Balance        int32
	BalanceMax     uint32
	Fade           int32
	FadeMax        uint32
	Mute           bool
	Volume         uint32
	Limit          uint32
	Max            uint32
	MilliDbPerStep uint32
	Steps          uint32
	Unity          uint32
}

func DefaultConfig() Config {
	return Config{
		BalanceMax:     15,
		Volume:         50,
		Limit:          100,
		Max:            100,
		MilliDbPerStep: 1024,
		Steps:          100,
		Unity:          80,
	}
}

type backend interface {
	setBalance(v int32) future.Future[struct{}]
	setFade(v int32) future.Future[struct{}]
	setMute(v bool) future.Future[struct{}]
	setVolume(v uint32) future.Future[struct{}]
	volumeInc() future.Future[struct{}]
	volumeDec() future.Future[struct{}]
	execute(cmd script.Command) error
}

type Service struct {
	service.Base
	backend backend

	balance        *watch.Value[int32]
	balanceMax     *watch.Value[uint32]
	fade           *watch.Value[int32]
	fadeMax        *watch.Value[uint32]
	mute           *watch.Value[bool]
	value          *watch.Value[uint32]
	limit          *watch.Value[uint32]
	max            *watch.Value[uint32]
	milliDbPerStep *watch.Value[uint32]
	steps          *watch.Value[uint32]
	unity          *watch.Value[uint32]
}

func newService(d *service.Device, cfg Config) *Service {
	s := d.Scheduler()
	id := func(name string) string {
		return fmt.Sprintf("%s(%s)", name, d.Udn())
	}
	return &Service{
		balance:        watch.New(s, id("Balance"), cfg.Balance),
		balanceMax:     watch.New(s, id("BalanceMax"), cfg.BalanceMax),
		fade:           watch.New(s, id("Fade"), cfg.Fade),
		fadeMax:        watch.New(s, id("FadeMax"), cfg.FadeMax),
		mute:           watch.New(s, id("Mute"), cfg.Mute),
		value:          watch.New(s, id("Value"), cfg.Volume),
		limit:          watch.New(s, id("VolumeLimit"), cfg.Limit),
		max:            watch.New(s, id("VolumeMax"), cfg.Max),
		milliDbPerStep: watch.New(s, id("VolumeMilliDbPerStep"), cfg.MilliDbPerStep),
		steps:          watch.New(s, id("VolumeSteps"), cfg.Steps),
		unity:          watch.New(s, id("VolumeUnity"), cfg.Unity),
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

	s.balance.Dispose()
	s.balanceMax.Dispose()
	s.fade.Dispose()
	s.fadeMax.Dispose()
	s.mute.Dispose()
	s.value.Dispose()
	s.limit.Dispose()
	s.max.Dispose()
	s.milliDbPerStep.Dispose()
	s.steps.Dispose()
	s.unity.Dispose()
}

// Proxy is a consumer's view of a volume service.
type Proxy struct {
	*service.Handle
	svc *Service
}

func (p *Proxy) Balance() watch.Watchable[int32] {
	p.Check("Balance")
	return p.svc.balance
}

func (p *Proxy) BalanceMax() watch.Watchable[uint32] {
	p.Check("BalanceMax")
	return p.svc.balanceMax
}

func (p *Proxy) Fade() watch.Watchable[int32] {
	p.Check("Fade")
	return p.svc.fade
}

func (p *Proxy) FadeMax() watch.Watchable[uint32] {
	p.Check("FadeMax")
	return p.svc.fadeMax
}

func (p *Proxy) Mute() watch.Watchable[bool] {
	p.Check("Mute")
	return p.svc.mute
}

// Value is the current volume.
func (p *Proxy) Value() watch.Watchable[uint32] {
	p.Check("Value")
	return p.svc.value
}

func (p *Proxy) VolumeLimit() watch.Watchable[uint32] {
	p.Check("VolumeLimit")
	return p.svc.limit
}

func (p *Proxy) VolumeMax() watch.Watchable[uint32] {
	p.Check("VolumeMax")
	return p.svc.max
}

func (p *Proxy) VolumeMilliDbPerStep() watch.Watchable[uint32] {
	p.Check("VolumeMilliDbPerStep")
	return p.svc.milliDbPerStep
}

func (p *Proxy) VolumeSteps() watch.Watchable[uint32] {
	p.Check("VolumeSteps")
	return p.svc.steps
}

func (p *Proxy) VolumeUnity() watch.Watchable[uint32] {
	p.Check("VolumeUnity")
	return p.svc.unity
}

func (p *Proxy) SetBalance(v int32) future.Future[struct{}] {
	p.Check("SetBalance")
	return p.svc.backend.setBalance(v)
}

func (p *Proxy) SetFade(v int32) future.Future[struct{}] {
	p.Check("SetFade")
	return p.svc.backend.setFade(v)
}

func (p *Proxy) SetMute(v bool) future.Future[struct{}] {
	p.Check("SetMute")
	return p.svc.backend.setMute(v)
}

// SetVolume requests a new volume. Values above the volume limit are clamped.
func (p *Proxy) SetVolume(v uint32) future.Future[struct{}] {
	p.Check("SetVolume")
	return p.svc.backend.setVolume(v)
}

func (p *Proxy) VolumeInc() future.Future[struct{}] {
	p.Check("VolumeInc")
	return p.svc.backend.volumeInc()
}

func (p *Proxy) VolumeDec() future.Future[struct{}] {
	p.Check("VolumeDec")
	return p.svc.backend.volumeDec()
}

var _ service.Service = (*Service)(nil)
var _ service.Proxy = (*Proxy)(nil)

// Kind is the capability this package implements.
const Kind = models.ServiceVolume
