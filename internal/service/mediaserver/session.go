package mediaserver

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/media"
	"avtopology/internal/models"
)

// Session is a browse handle. It owns at most one container, which every
// browse updates with a new snapshot.
type Session struct {
	svc       *Service
	id        string
	sequence  uint32
	container *media.Container
	disposed  bool
}

func (s *Session) ID() string { return s.id }

// Browse lists the children of d, or the root menu when d is nil. A non-nil
// d must carry at least one type.
func (s *Session) Browse(d *media.Datum) future.Future[*media.Container] {
	s.check("Browse")
	if d != nil && len(d.Types()) == 0 {
		panic(fmt.Sprintf("mediaserver: Browse: session %s: datum has no type", s.id))
	}

	out, resolve := future.New[*media.Container]()
	future.Then(s.svc.backend.browse(d), s.svc.Scheduler(), func(r result, err error) {
		switch {
		case err != nil:
			resolve(nil, err)
		case s.disposed:
			resolve(nil, fmt.Errorf("session %s: %w", s.id, models.ErrDisposed))
		default:
			resolve(s.publish(r), nil)
		}
	})
	return out
}

// Query is reserved for free text search.
func (s *Session) Query(text string) future.Future[*media.Container] {
	s.check("Query")
	return future.Resolved[*media.Container](nil, fmt.Errorf("query %q: %w", text, models.ErrNotSupported))
}

// Dispose releases the session's container and unregisters it from its
// service.
func (s *Session) Dispose() {
	s.check("Dispose")
	if s.container != nil {
		s.container.Dispose()
		s.container = nil
	}
	s.disposed = true
	s.svc.removeSession(s)
}

func (s *Session) publish(r result) *media.Container {
	s.sequence++
	snap := media.NewSnapshot(s.sequence, r.data, r.alpha)
	if s.container == nil {
		id := fmt.Sprintf("Container(%s/%s)", s.svc.Device().Udn(), s.id)
		s.container = media.NewContainer(s.svc.Scheduler(), id, snap)
	} else {
		s.container.Update(snap)
	}
	log.Debug().Str("module", "mediaserver").Str("session", s.id).
		Uint32("sequence", s.sequence).Uint32("total", snap.Total()).Msg("browsed")
	return s.container
}

func (s *Session) check(op string) {
	if s.disposed {
		panic(fmt.Sprintf("mediaserver: %s: session %s used after dispose", op, s.id))
	}
	s.svc.Scheduler().Assert()
}
