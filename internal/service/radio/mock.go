package radio

import (
	"fmt"
	"slices"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
)

func NewMock(d *service.Device, cfg Config) *Service {
	s := newService(d, cfg)
	m := &mock{svc: s, channels: make(map[uint32]Channel, len(cfg.Channels))}
	for _, c := range cfg.Channels {
		m.channels[c.Id] = c
	}
	s.backend = m
	s.Base = service.NewBase(d, Kind, service.MockSubscriber{}, s.newProxy)
	return s
}

type mock struct {
	svc      *Service
	channels map[uint32]Channel
}

func (m *mock) do(fn func() error) future.Future[struct{}] {
	return service.Local(m.svc.Scheduler(), func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func (m *mock) transport(state string) future.Future[struct{}] {
	return m.do(func() error {
		m.svc.transportState.Update(state)
		return nil
	})
}

func (m *mock) play() future.Future[struct{}] {
	return m.do(func() error {
		if m.svc.uri.Value() == "" {
			return fmt.Errorf("radio %s: no channel tuned: %w", m.svc.Device().Udn(), models.ErrNotFound)
		}
		m.svc.transportState.Update(models.TransportStatePlaying)
		return nil
	})
}

func (m *mock) pause() future.Future[struct{}] {
	return m.transport(models.TransportStatePaused)
}

func (m *mock) stop() future.Future[struct{}] {
	return m.transport(models.TransportStateStopped)
}

func (m *mock) seekSecondAbsolute(uint32) future.Future[struct{}] {
	return m.do(func() error { return nil })
}

func (m *mock) seekSecondRelative(int32) future.Future[struct{}] {
	return m.do(func() error { return nil })
}

func (m *mock) setId(id uint32, uri string) future.Future[struct{}] {
	return m.do(func() error {
		c, ok := m.channels[id]
		if !ok || !slices.Contains(m.svc.idArray.Value(), id) {
			return fmt.Errorf("channel %d: %w", id, models.ErrNotFound)
		}
		if uri == "" {
			uri = c.Uri
		}
		m.tune(id, uri, c.Metadata)
		return nil
	})
}

func (m *mock) setChannel(uri, metadata string) future.Future[struct{}] {
	return m.do(func() error {
		m.tune(0, uri, metadata)
		return nil
	})
}

func (m *mock) tune(id uint32, uri, metadata string) {
	m.svc.id.Update(id)
	m.svc.uri.Update(uri)
	m.svc.metadata.Update(metadata)
}

func (m *mock) read(id uint32) future.Future[Channel] {
	return service.Local(m.svc.Scheduler(), func() (Channel, error) {
		c, ok := m.channels[id]
		if !ok {
			return Channel{}, fmt.Errorf("channel %d: %w", id, models.ErrNotFound)
		}
		return c, nil
	})
}

func (m *mock) readList(ids []uint32) future.Future[[]Channel] {
	return service.Local(m.svc.Scheduler(), func() ([]Channel, error) {
		out := make([]Channel, 0, len(ids))
		for _, id := range ids {
			if c, ok := m.channels[id]; ok {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

func (m *mock) execute(cmd script.Command) error {
	switch cmd.Name {
	case "id":
		v, err := cmd.Uint()
		if err != nil {
			return err
		}
		m.svc.id.Update(v)
	case "idarray":
		ids, err := cmd.Uints()
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := m.channels[id]; !ok {
				m.channels[id] = Channel{Id: id}
			}
		}
		m.svc.idArray.Update(ids)
	case "transportstate":
		v, err := cmd.Value()
		if err != nil {
			return err
		}
		m.svc.transportState.Update(v)
	case "metadata":
		m.svc.metadata.Update(cmd.Text())
	case "uri":
		v, err := cmd.Value()
		if err != nil {
			return err
		}
		m.svc.uri.Update(v)
	case "channelsmax":
		v, err := cmd.Uint()
		if err != nil {
			return err
		}
		m.svc.channelsMax = v
	case "protocolinfo":
		m.svc.protocolInfo = cmd.Text()
	default:
		return script.Unsupported(cmd)
	}
	return nil
}
