package playlist

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
	m := &mock{svc: s, tracks: make(map[uint32]Track, len(cfg.Tracks))}
	for _, t := range cfg.Tracks {
		m.tracks[t.Id] = t
		m.nextId = max(m.nextId, t.Id)
	}
	m.nextId++
	s.backend = m
	s.Base = service.NewBase(d, Kind, service.MockSubscriber{}, s.newProxy)
	return s
}

// mock keeps the track list in memory. IdArray is the authoritative order;
// tracks holds what is known about each id.
type mock struct {
	svc    *Service
	tracks map[uint32]Track
	nextId uint32
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
		ids := m.svc.idArray.Value()
		if len(ids) == 0 {
			return nil
		}
		if !slices.Contains(ids, m.svc.id.Value()) {
			m.svc.id.Update(ids[0])
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

func (m *mock) previous() future.Future[struct{}] {
	return m.do(func() error {
		m.step(-1)
		return nil
	})
}

func (m *mock) next() future.Future[struct{}] {
	return m.do(func() error {
		m.step(1)
		return nil
	})
}

// step moves the current track by delta, wrapping when repeat is on and
// stopping at either end otherwise.
func (m *mock) step(delta int) {
	ids := m.svc.idArray.Value()
	if len(ids) == 0 {
		return
	}
	i := slices.Index(ids, m.svc.id.Value())
	if i < 0 {
		m.svc.id.Update(ids[0])
		return
	}
	j := i + delta
	switch {
	case j >= 0 && j < len(ids):
		m.svc.id.Update(ids[j])
	case m.svc.repeat.Value():
		m.svc.id.Update(ids[(j+len(ids))%len(ids)])
	default:
		m.svc.transportState.Update(models.TransportStateStopped)
	}
}

func (m *mock) seekId(id uint32) future.Future[struct{}] {
	return m.do(func() error {
		if !slices.Contains(m.svc.idArray.Value(), id) {
			return fmt.Errorf("track %d: %w", id, models.ErrNotFound)
		}
		m.svc.id.Update(id)
		return nil
	})
}

func (m *mock) seekIndex(index uint32) future.Future[struct{}] {
	return m.do(func() error {
		ids := m.svc.idArray.Value()
		if int(index) >= len(ids) {
			return fmt.Errorf("track index %d of %d: %w", index, len(ids), models.ErrNotFound)
		}
		m.svc.id.Update(ids[index])
		return nil
	})
}

// Seeking within a track has no observable state on the mock.
func (m *mock) seekSecondAbsolute(uint32) future.Future[struct{}] {
	return m.do(func() error { return nil })
}

func (m *mock) seekSecondRelative(int32) future.Future[struct{}] {
	return m.do(func() error { return nil })
}

func (m *mock) insert(afterId uint32, uri, metadata string) future.Future[uint32] {
	return service.Local(m.svc.Scheduler(), func() (uint32, error) {
		ids := m.svc.idArray.Value()
		if uint32(len(ids)) >= m.svc.tracksMax {
			return 0, fmt.Errorf("playlist full at %d tracks: %w", m.svc.tracksMax, models.ErrNotSupported)
		}
		at := 0
		if afterId != 0 {
			i := slices.Index(ids, afterId)
			if i < 0 {
				return 0, fmt.Errorf("insert after track %d: %w", afterId, models.ErrNotFound)
			}
			at = i + 1
		}

		id := m.nextId
		m.nextId++
		m.tracks[id] = Track{Id: id, Uri: uri, Metadata: metadata}
		m.svc.idArray.Update(slices.Insert(slices.Clone(ids), at, id))
		return id, nil
	})
}

func (m *mock) deleteId(id uint32) future.Future[struct{}] {
	return m.do(func() error {
		ids := m.svc.idArray.Value()
		i := slices.Index(ids, id)
		if i < 0 {
			return fmt.Errorf("track %d: %w", id, models.ErrNotFound)
		}
		next := slices.Delete(slices.Clone(ids), i, i+1)
		delete(m.tracks, id)

		if m.svc.id.Value() == id {
			switch {
			case i < len(next):
				m.svc.id.Update(next[i])
			default:
				m.svc.id.Update(0)
				m.svc.transportState.Update(models.TransportStateStopped)
			}
		}
		m.svc.idArray.Update(next)
		return nil
	})
}

func (m *mock) deleteAll() future.Future[struct{}] {
	return m.do(func() error {
		clear(m.tracks)
		m.svc.id.Update(0)
		m.svc.idArray.Update([]uint32{})
		m.svc.transportState.Update(models.TransportStateStopped)
		return nil
	})
}

func (m *mock) setRepeat(v bool) future.Future[struct{}] {
	return m.do(func() error {
		m.svc.repeat.Update(v)
		return nil
	})
}

func (m *mock) setShuffle(v bool) future.Future[struct{}] {
	return m.do(func() error {
		m.svc.shuffle.Update(v)
		return nil
	})
}

func (m *mock) read(id uint32) future.Future[Track] {
	return service.Local(m.svc.Scheduler(), func() (Track, error) {
		t, ok := m.tracks[id]
		if !ok {
			return Track{}, fmt.Errorf("track %d: %w", id, models.ErrNotFound)
		}
		return t, nil
	})
}

// readList skips ids that are not in the playlist.
func (m *mock) readList(ids []uint32) future.Future[[]Track] {
	return service.Local(m.svc.Scheduler(), func() ([]Track, error) {
		out := make([]Track, 0, len(ids))
		for _, id := range ids {
			if t, ok := m.tracks[id]; ok {
				out = append(out, t)
			}
		}
		return out, nil
	})
}

func (m *mock) execute(cmd script.Command) error {
	switch cmd.Name {
	case "tracksmax":
		v, err := cmd.Uint()
		if err != nil {
			return err
		}
		m.svc.tracksMax = v
	case "protocolinfo":
		m.svc.protocolInfo = cmd.Text()
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
		m.replaceIds(ids)
	case "transportstate":
		v, err := cmd.Value()
		if err != nil {
			return err
		}
		m.svc.transportState.Update(v)
	case "repeat":
		v, err := cmd.Bool()
		if err != nil {
			return err
		}
		m.svc.repeat.Update(v)
	case "shuffle":
		v, err := cmd.Bool()
		if err != nil {
			return err
		}
		m.svc.shuffle.Update(v)
	default:
		return script.Unsupported(cmd)
	}
	return nil
}

// replaceIds installs a scripted id list, keeping known tracks and adding
// empty entries for new ids.
func (m *mock) replaceIds(ids []uint32) {
	tracks := make(map[uint32]Track, len(ids))
	for _, id := range ids {
		t, ok := m.tracks[id]
		if !ok {
			t = Track{Id: id}
		}
		tracks[id] = t
		m.nextId = max(m.nextId, id+1)
	}
	m.tracks = tracks
	m.svc.idArray.Update(ids)
}
