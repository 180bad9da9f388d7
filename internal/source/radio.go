package source

import (
	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/service"
	"avtopology/internal/service/radio"
	"avtopology/internal/watch"
)

// Radio controls the radio source. It supports transport and seek only;
// the radio has no track list to skip through and no play mode.
type Radio struct {
	base[*radio.Proxy]
	transportState *watch.Funcs[string]
}

func NewRadio(d *service.Device, caps *Capabilities) (*Radio, error) {
	r := &Radio{base: base[*radio.Proxy]{name: "Radio", sched: d.Scheduler(), caps: caps}}
	r.transportState = watch.OnChange(func(v string) { r.caps.TransportState.Update(v) })

	req, err := service.Request(d, radio.Kind, r.activate)
	if err != nil {
		return nil, err
	}
	r.req = req
	return r, nil
}

func (r *Radio) activate(p *radio.Proxy) {
	log.Debug().Str("module", "source").Str("udn", p.Device().Udn()).Msg("radio controller active")
	r.caps.HasInfoNext.Update(false)
	r.caps.HasContainer.Update(true)
	r.caps.CanPause.Update(false)
	r.caps.CanSeek.Update(false)
	r.caps.CanSkip.Update(false)
	r.caps.HasPlayMode.Update(false)
	p.TransportState().AddWatcher(r.transportState)
	r.caps.HasSourceControl.Update(true)
}

func (r *Radio) Play() future.Future[struct{}] {
	p, ok := r.proxy("Play")
	if !ok {
		return notReady("Play")
	}
	return p.Play()
}

func (r *Radio) Pause() future.Future[struct{}] {
	p, ok := r.proxy("Pause")
	if !ok {
		return notReady("Pause")
	}
	return p.Pause()
}

func (r *Radio) Stop() future.Future[struct{}] {
	p, ok := r.proxy("Stop")
	if !ok {
		return notReady("Stop")
	}
	return p.Stop()
}

func (r *Radio) Previous() future.Future[struct{}] {
	r.check("Previous")
	return unsupported("Previous")
}

func (r *Radio) Next() future.Future[struct{}] {
	r.check("Next")
	return unsupported("Next")
}

func (r *Radio) Seek(seconds uint32) future.Future[struct{}] {
	p, ok := r.proxy("Seek")
	if !ok {
		return notReady("Seek")
	}
	return p.SeekSecondAbsolute(seconds)
}

func (r *Radio) SetRepeat(bool) future.Future[struct{}] {
	r.check("SetRepeat")
	return unsupported("SetRepeat")
}

func (r *Radio) SetShuffle(bool) future.Future[struct{}] {
	r.check("SetShuffle")
	return unsupported("SetShuffle")
}

// Dispose releases the proxy. A proxy still in flight is disposed on
// arrival without touching the capabilities.
func (r *Radio) Dispose() {
	r.check("Dispose")
	if p, ok := r.req.Cancel(); ok {
		p.TransportState().RemoveWatcher(r.transportState)
		p.Dispose()
		r.caps.clear()
	}
	r.caps = nil
	r.disposed = true
}

var _ Controller = (*Radio)(nil)
