package product

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
)

func NewMock(d *service.Device, cfg Config) *Service {
	s := newService(d, cfg)
	s.backend = &mock{svc: s}
	s.Base = service.NewBase(d, Kind, service.MockSubscriber{}, s.newProxy)
	return s
}

type mock struct {
	svc *Service
}

func (m *mock) setSourceIndex(index uint32) future.Future[struct{}] {
	return service.Local(m.svc.Scheduler(), func() (struct{}, error) {
		if _, ok := current(m.svc.sources.Value(), index); !ok {
			return struct{}{}, fmt.Errorf("source index %d: %w", index, models.ErrNotFound)
		}
		m.svc.sourceIndex.Update(index)
		return struct{}{}, nil
	})
}

func (m *mock) setStandby(v bool) future.Future[struct{}] {
	return service.Local(m.svc.Scheduler(), func() (struct{}, error) {
		m.svc.standby.Update(v)
		return struct{}{}, nil
	})
}

func (m *mock) execute(cmd script.Command) error {
	switch cmd.Name {
	case "room":
		m.svc.room.Update(cmd.Text())
	case "name":
		m.svc.name.Update(cmd.Text())
	case "sourceindex":
		v, err := cmd.Uint()
		if err != nil {
			return err
		}
		m.svc.sourceIndex.Update(v)
	case "standby":
		v, err := cmd.Bool()
		if err != nil {
			return err
		}
		m.svc.standby.Update(v)
	case "attributes":
		m.svc.attributes = cmd.Text()
	case "source":
		return m.source(cmd)
	default:
		return script.Unsupported(cmd)
	}
	return nil
}

// source replaces one entry of the source list:
// "source <index> <type> <visible> <name...>".
func (m *mock) source(cmd script.Command) error {
	if len(cmd.Args) < 4 {
		return fmt.Errorf("source: want <index> <type> <visible> <name>, got %q", cmd.Text())
	}
	index, err := strconv.ParseUint(cmd.Args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("source index: %w", err)
	}
	visible, err := strconv.ParseBool(strings.ToLower(cmd.Args[2]))
	if err != nil {
		return fmt.Errorf("source visible: %w", err)
	}
	sources := slices.Clone(m.svc.sources.Value())
	if int(index) >= len(sources) {
		return fmt.Errorf("source index %d: %w", index, models.ErrNotFound)
	}
	sources[index] = models.Source{
		Name:    strings.Join(cmd.Args[3:], " "),
		Type:    cmd.Args[1],
		Visible: visible,
	}
	m.svc.sources.Update(sources)
	return nil
}
