package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"avtopology/internal/future"
	"avtopology/internal/media"
	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/service"
	"avtopology/internal/service/mediaserver"
)

const (
	browseTimeout    = 10 * time.Second
	defaultPageCount = 100
	maxPageCount     = 500
)

type browsePage struct {
	Sequence uint32             `json:"sequence"`
	Total    uint32             `json:"total"`
	Index    uint32             `json:"index"`
	Items    []*media.Datum     `json:"items"`
	Alpha    []media.AlphaEntry `json:"alpha,omitempty"`
}

func (s *Server) handleMediaRoot(w http.ResponseWriter, r *http.Request) {
	s.serveBrowse(w, r, nil)
}

// handleMediaBrowse walks a path of child indices from the root menu, for
// example /browse/1/4 lists the fifth artist.
func (s *Server) handleMediaBrowse(w http.ResponseWriter, r *http.Request) {
	var path []uint32
	for _, seg := range strings.Split(strings.Trim(chi.URLParam(r, "*"), "/"), "/") {
		if seg == "" {
			continue
		}
		i, err := strconv.ParseUint(seg, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid browse path")
			return
		}
		path = append(path, uint32(i))
	}
	s.serveBrowse(w, r, path)
}

func (s *Server) serveBrowse(w http.ResponseWriter, r *http.Request, path []uint32) {
	index, count, ok := pageParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid index or count")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), browseTimeout)
	defer cancel()

	var page *browsePage
	err := s.withMediaServer(ctx, chi.URLParam(r, "udn"), func(p *mediaserver.Proxy) error {
		var err error
		page, err = s.browse(ctx, p, path, index, count)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func pageParams(r *http.Request) (index, count uint32, ok bool) {
	count = defaultPageCount
	q := r.URL.Query()
	if v := q.Get("index"); v != "" {
		i, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, 0, false
		}
		index = uint32(i)
	}
	if v := q.Get("count"); v != "" {
		c, err := strconv.ParseUint(v, 10, 32)
		if err != nil || c > maxPageCount {
			return 0, 0, false
		}
		count = uint32(c)
	}
	return index, count, true
}

// withMediaServer holds a media server proxy for the duration of fn.
func (s *Server) withMediaServer(ctx context.Context, udn string, fn func(p *mediaserver.Proxy) error) error {
	sched := s.net.Scheduler()
	delivered := make(chan *mediaserver.Proxy, 1)

	var (
		req *service.ProxyRequest[*mediaserver.Proxy]
		err error
	)
	sched.Execute(func() {
		d, ok := s.net.Device(udn)
		if !ok {
			err = fmt.Errorf("device %s: %w", udn, models.ErrNotFound)
			return
		}
		req, err = service.Request(d, mediaserver.Kind, func(p *mediaserver.Proxy) { delivered <- p })
	})
	if err != nil {
		return err
	}
	defer sched.Execute(func() {
		if p, ok := req.Cancel(); ok {
			p.Dispose()
		}
	})

	select {
	case p := <-delivered:
		return fn(p)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// browse opens a session, follows path from the root menu and reads one
// page of the final container.
func (s *Server) browse(ctx context.Context, p *mediaserver.Proxy, path []uint32, index, count uint32) (*browsePage, error) {
	sched := s.net.Scheduler()
	sess, err := openSession(ctx, sched, p)
	if err != nil {
		return nil, err
	}
	defer sched.Execute(sess.Dispose)

	c, err := await(ctx, sched, func() future.Future[*media.Container] { return sess.Browse(nil) })
	if err != nil {
		return nil, err
	}
	for _, i := range path {
		frag, err := readSnapshot(ctx, sched, c, i, 1)
		if err != nil {
			return nil, err
		}
		if len(frag.Data) == 0 {
			return nil, fmt.Errorf("browse index %d: %w", i, models.ErrNotFound)
		}
		c, err = await(ctx, sched, func() future.Future[*media.Container] { return sess.Browse(frag.Data[0]) })
		if err != nil {
			return nil, err
		}
	}

	var snap *media.Snapshot
	sched.Execute(func() { snap = c.Snapshot().Value() })
	frag, err := readSnapshot(ctx, sched, c, index, count)
	if err != nil {
		return nil, err
	}
	return &browsePage{
		Sequence: snap.Sequence(),
		Total:    snap.Total(),
		Index:    frag.Index,
		Items:    frag.Data,
		Alpha:    snap.AlphaMap(),
	}, nil
}

// openSession waits for a new session. The session is created on a later
// scheduler turn whether or not ctx ends first, so an abandoned one is
// disposed here.
func openSession(ctx context.Context, sched scheduler.Scheduler, p *mediaserver.Proxy) (*mediaserver.Session, error) {
	var f future.Future[*mediaserver.Session]
	sched.Execute(func() { f = p.CreateSession() })
	sess, err := f.Wait(ctx)
	if err == nil {
		return sess, nil
	}
	// queued behind the creation, so f has resolved by the time this runs
	sched.Execute(func() {
		if sess, serr, ok := f.Sync(); ok && serr == nil {
			sess.Dispose()
		}
	})
	return nil, err
}

// readSnapshot reads up to count entries from index of the current
// snapshot. An index past the end is not found.
func readSnapshot(ctx context.Context, sched scheduler.Scheduler, c *media.Container, index, count uint32) (*media.Fragment, error) {
	var (
		f   future.Future[*media.Fragment]
		err error
	)
	sched.Execute(func() {
		snap := c.Snapshot().Value()
		total := snap.Total()
		if index > total {
			err = fmt.Errorf("browse index %d of %d: %w", index, total, models.ErrNotFound)
			return
		}
		f = snap.Read(index, min(count, total-index))
	})
	if err != nil {
		return nil, err
	}
	return f.Wait(ctx)
}

func await[T any](ctx context.Context, sched scheduler.Scheduler, fn func() future.Future[T]) (T, error) {
	var f future.Future[T]
	sched.Execute(func() { f = fn() })
	return f.Wait(ctx)
}
