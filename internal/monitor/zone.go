package monitor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/service/product"
	"avtopology/internal/service/volume"
	"avtopology/internal/source"
	"avtopology/internal/watch"
)

// zone follows one device with a product service. The selected source is
// driven through a source controller that is replaced whenever the source
// type changes.
type zone struct {
	m     *Monitor
	d     *service.Device
	state models.ZoneState
	ready bool

	product *service.ProxyRequest[*product.Proxy]
	volume  *service.ProxyRequest[*volume.Proxy]

	caps       *source.Capabilities
	controller source.Controller
	sourceType string

	room, name     *watch.Funcs[string]
	sourceIndex    *watch.Funcs[uint32]
	sources        *watch.Funcs[[]models.Source]
	standby        *watch.Funcs[bool]
	level          *watch.Funcs[uint32]
	mute           *watch.Funcs[bool]
	transportState *watch.Funcs[string]
}

func newZone(m *Monitor, d *service.Device) (*zone, error) {
	z := &zone{
		m:     m,
		d:     d,
		state: models.ZoneState{Udn: d.Udn()},
		caps:  source.NewCapabilities(d.Scheduler(), d.Udn()),
	}
	z.room = watch.OnChange(func(v string) { z.state.Room = v; z.changed() })
	z.name = watch.OnChange(func(v string) { z.state.Name = v; z.changed() })
	z.standby = watch.OnChange(func(v bool) { z.state.Standby = v; z.changed() })
	z.sourceIndex = watch.OnChange(func(uint32) { z.selectSource() })
	z.sources = watch.OnChange(func([]models.Source) { z.selectSource() })
	z.level = watch.OnChange(func(v uint32) { z.state.Volume = v; z.changed() })
	z.mute = watch.OnChange(func(v bool) { z.state.Mute = v; z.changed() })
	z.transportState = watch.OnChange(func(v string) { z.state.TransportState = v; z.changed() })
	z.caps.TransportState.AddWatcher(z.transportState)

	var err error
	if z.product, err = service.Request(d, product.Kind, z.productActive); err != nil {
		z.caps.TransportState.RemoveWatcher(z.transportState)
		z.caps.Dispose()
		return nil, err
	}
	if d.Has(volume.Kind) {
		// the request cannot fail once Has reports the kind
		z.volume, _ = service.Request(d, volume.Kind, z.volumeActive)
	}
	return z, nil
}

func (z *zone) productActive(p *product.Proxy) {
	p.Room().AddWatcher(z.room)
	p.Name().AddWatcher(z.name)
	p.Standby().AddWatcher(z.standby)
	p.Sources().AddWatcher(z.sources)
	p.SourceIndex().AddWatcher(z.sourceIndex)
	z.ready = true
	z.m.refresh()
}

func (z *zone) volumeActive(p *volume.Proxy) {
	p.Value().AddWatcher(z.level)
	p.Mute().AddWatcher(z.mute)
}

func (z *zone) changed() {
	if z.ready {
		z.m.refresh()
	}
}

// selectSource swaps the controller when the selected source type changes.
func (z *zone) selectSource() {
	p, ok := z.product.Proxy()
	if !ok {
		return
	}
	src, _ := p.Source()
	z.state.Source = src.Name
	if src.Type == z.sourceType {
		z.changed()
		return
	}

	if z.controller != nil {
		z.controller.Dispose()
		z.controller = nil
	}
	z.caps.TransportState.Update("")
	z.sourceType = src.Type

	c, err := source.New(src.Type, z.d, z.caps)
	switch {
	case errors.Is(err, models.ErrNotSupported):
		log.Debug().Str("module", "monitor").Str("udn", z.d.Udn()).Str("source", src.Type).Msg("source has no controller")
	case err != nil:
		log.Warn().Err(err).Str("module", "monitor").Str("udn", z.d.Udn()).Str("source", src.Type).Msg("cannot control source")
	default:
		z.controller = c
	}
	z.changed()
}

func (z *zone) transport(op string) (future.Future[struct{}], error) {
	if z.controller == nil {
		return nil, fmt.Errorf("zone %s source %q: %w", z.d.Udn(), z.sourceType, models.ErrNotSupported)
	}
	switch strings.ToLower(op) {
	case "play":
		return z.controller.Play(), nil
	case "pause":
		return z.controller.Pause(), nil
	case "stop":
		return z.controller.Stop(), nil
	case "next":
		return z.controller.Next(), nil
	case "previous":
		return z.controller.Previous(), nil
	}
	return nil, fmt.Errorf("transport command %q: %w", op, models.ErrNotSupported)
}

func (z *zone) close() {
	if p, ok := z.product.Cancel(); ok {
		p.Room().RemoveWatcher(z.room)
		p.Name().RemoveWatcher(z.name)
		p.Standby().RemoveWatcher(z.standby)
		p.Sources().RemoveWatcher(z.sources)
		p.SourceIndex().RemoveWatcher(z.sourceIndex)
		p.Dispose()
	}
	if z.volume != nil {
		if p, ok := z.volume.Cancel(); ok {
			p.Value().RemoveWatcher(z.level)
			p.Mute().RemoveWatcher(z.mute)
			p.Dispose()
		}
	}
	if z.controller != nil {
		z.controller.Dispose()
		z.controller = nil
	}
	z.ready = false
	z.caps.TransportState.RemoveWatcher(z.transportState)
	z.caps.Dispose()
}
