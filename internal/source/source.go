// Package source adapts the transport capabilities of a device to a single
// controller surface for whichever source is currently selected.
//
// A controller writes into a Capabilities set owned by its caller. Flags
// become meaningful only once the controller has received its proxy, which
// happens asynchronously; the caller may dispose the controller at any time
// before that.
package source

import (
	"fmt"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/service"
	"avtopology/internal/watch"
)

// Capabilities is the set of values a controller publishes. The caller
// creates and disposes them; controllers only Update.
type Capabilities struct {
	HasSourceControl *watch.Value[bool]
	HasInfoNext      *watch.Value[bool]
	HasContainer     *watch.Value[bool]
	TransportState   *watch.Value[string]
	CanPause         *watch.Value[bool]
	CanSkip          *watch.Value[bool]
	CanSeek          *watch.Value[bool]
	HasPlayMode      *watch.Value[bool]
	Shuffle          *watch.Value[bool]
	Repeat           *watch.Value[bool]
}

// NewCapabilities returns a set with every flag false and an empty
// transport state.
func NewCapabilities(s scheduler.Scheduler, id string) *Capabilities {
	flag := func(name string) *watch.Value[bool] {
		return watch.New(s, id+"."+name, false)
	}
	return &Capabilities{
		HasSourceControl: flag("HasSourceControl"),
		HasInfoNext:      flag("HasInfoNext"),
		HasContainer:     flag("HasContainer"),
		TransportState:   watch.New(s, id+".TransportState", ""),
		CanPause:         flag("CanPause"),
		CanSkip:          flag("CanSkip"),
		CanSeek:          flag("CanSeek"),
		HasPlayMode:      flag("HasPlayMode"),
		Shuffle:          flag("Shuffle"),
		Repeat:           flag("Repeat"),
	}
}

func (c *Capabilities) Dispose() {
	c.HasSourceControl.Dispose()
	c.HasInfoNext.Dispose()
	c.HasContainer.Dispose()
	c.TransportState.Dispose()
	c.CanPause.Dispose()
	c.CanSkip.Dispose()
	c.CanSeek.Dispose()
	c.HasPlayMode.Dispose()
	c.Shuffle.Dispose()
	c.Repeat.Dispose()
}

// clear drops the generic flags a released controller no longer backs.
func (c *Capabilities) clear() {
	c.HasSourceControl.Update(false)
	c.HasContainer.Update(false)
	c.CanPause.Update(false)
	c.CanSeek.Update(false)
}

// Controller drives the transport of one source. Commands issued before the
// proxy arrives resolve with models.ErrNotReady; commands the source cannot
// perform resolve with models.ErrNotSupported. Any call after Dispose panics.
type Controller interface {
	Play() future.Future[struct{}]
	Pause() future.Future[struct{}]
	Stop() future.Future[struct{}]
	Previous() future.Future[struct{}]
	Next() future.Future[struct{}]
	Seek(seconds uint32) future.Future[struct{}]
	SetRepeat(v bool) future.Future[struct{}]
	SetShuffle(v bool) future.Future[struct{}]
	Dispose()
}

// New returns the controller for a source type.
func New(sourceType string, d *service.Device, caps *Capabilities) (Controller, error) {
	switch sourceType {
	case models.SourceTypeRadio:
		return NewRadio(d, caps)
	case models.SourceTypePlaylist:
		return NewPlaylist(d, caps)
	}
	return nil, fmt.Errorf("source type %q: %w", sourceType, models.ErrNotSupported)
}

func unsupported(op string) future.Future[struct{}] {
	return future.Resolved(struct{}{}, fmt.Errorf("%s: %w", op, models.ErrNotSupported))
}

func notReady(op string) future.Future[struct{}] {
	return future.Resolved(struct{}{}, fmt.Errorf("%s: %w", op, models.ErrNotReady))
}

// base carries the request and dispose state shared by every controller.
type base[P service.Proxy] struct {
	name     string
	sched    scheduler.Scheduler
	caps     *Capabilities
	req      *service.ProxyRequest[P]
	disposed bool
}

func (b *base[P]) check(op string) {
	if b.disposed {
		panic(fmt.Sprintf("source: %s.%s after Dispose", b.name, op))
	}
	b.sched.Assert()
}

// proxy returns the active proxy for op, or false when it has not arrived.
func (b *base[P]) proxy(op string) (P, bool) {
	b.check(op)
	return b.req.Proxy()
}
