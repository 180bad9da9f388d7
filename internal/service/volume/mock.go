package volume

import (
	"avtopology/internal/future"
	"avtopology/internal/service"
	"avtopology/internal/script"
)

// NewMock creates a volume service whose state lives in memory and is driven
// by proxy actions and scripting. The limit is clamped to the maximum and the
// starting volume to the limit.
func NewMock(d *service.Device, cfg Config) *Service {
	cfg.Limit = min(cfg.Limit, cfg.Max)
	cfg.Volume = min(cfg.Volume, cfg.Limit)

	s := newService(d, cfg)
	s.backend = &mock{svc: s}
	s.Base = service.NewBase(d, Kind, service.MockSubscriber{}, s.newProxy)
	return s
}

type mock struct {
	svc *Service
}

func (m *mock) local(fn func()) future.Future[struct{}] {
	return service.Local(m.svc.Scheduler(), func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

func (m *mock) setBalance(v int32) future.Future[struct{}] {
	return m.local(func() { m.svc.balance.Update(v) })
}

func (m *mock) setFade(v int32) future.Future[struct{}] {
	return m.local(func() { m.svc.fade.Update(v) })
}

func (m *mock) setMute(v bool) future.Future[struct{}] {
	return m.local(func() { m.svc.mute.Update(v) })
}

func (m *mock) setVolume(v uint32) future.Future[struct{}] {
	return m.local(func() { m.applyVolume(v) })
}

func (m *mock) volumeInc() future.Future[struct{}] {
	return m.local(m.inc)
}

func (m *mock) volumeDec() future.Future[struct{}] {
	return m.local(m.dec)
}

func (m *mock) applyVolume(v uint32) {
	m.svc.value.Update(min(v, m.svc.limit.Value()))
}

func (m *mock) inc() {
	if cur := m.svc.value.Value(); cur < m.svc.limit.Value() {
		m.svc.value.Update(cur + 1)
	}
}

func (m *mock) dec() {
	if cur := m.svc.value.Value(); cur > 0 {
		m.svc.value.Update(cur - 1)
	}
}

func (m *mock) execute(cmd script.Command) error {
	switch cmd.Name {
	case "balance":
		v, err := cmd.Int()
		if err != nil {
			return err
		}
		m.svc.balance.Update(v)
	case "fade":
		v, err := cmd.Int()
		if err != nil {
			return err
		}
		m.svc.fade.Update(v)
	case "mute":
		v, err := cmd.Bool()
		if err != nil {
			return err
		}
		m.svc.mute.Update(v)
	case "value", "volume":
		v, err := cmd.Uint()
		if err != nil {
			return err
		}
		m.applyVolume(v)
	case "volumelimit":
		v, err := cmd.Uint()
		if err != nil {
			return err
		}
		m.svc.limit.Update(min(v, m.svc.max.Value()))
		m.applyVolume(m.svc.value.Value())
	case "volumeinc":
		m.inc()
	case "volumedec":
		m.dec()
	default:
		return script.Unsupported(cmd)
	}
	return nil
}
