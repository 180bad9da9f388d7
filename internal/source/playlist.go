package source

import (
	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/service"
	"avtopology/internal/service/playlist"
	"avtopology/internal/watch"
)

// Playlist controls the playlist source, which supports every command.
type Playlist struct {
	base[*playlist.Proxy]
	transportState *watch.Funcs[string]
	shuffle        *watch.Funcs[bool]
	repeat         *watch.Funcs[bool]
}

func NewPlaylist(d *service.Device, caps *Capabilities) (*Playlist, error) {
	c := &Playlist{base: base[*playlist.Proxy]{name: "Playlist", sched: d.Scheduler(), caps: caps}}
	c.transportState = watch.OnChange(func(v string) { c.caps.TransportState.Update(v) })
	c.shuffle = watch.OnChange(func(v bool) { c.caps.Shuffle.Update(v) })
	c.repeat = watch.OnChange(func(v bool) { c.caps.Repeat.Update(v) })

	req, err := service.Request(d, playlist.Kind, c.activate)
	if err != nil {
		return nil, err
	}
	c.req = req
	return c, nil
}

func (c *Playlist) activate(p *playlist.Proxy) {
	log.Debug().Str("module", "source").Str("udn", p.Device().Udn()).Msg("playlist controller active")
	c.caps.HasInfoNext.Update(true)
	c.caps.HasContainer.Update(true)
	c.caps.CanPause.Update(true)
	c.caps.CanSeek.Update(true)
	c.caps.CanSkip.Update(true)
	c.caps.HasPlayMode.Update(true)
	p.TransportState().AddWatcher(c.transportState)
	p.Shuffle().AddWatcher(c.shuffle)
	p.Repeat().AddWatcher(c.repeat)
	c.caps.HasSourceControl.Update(true)
}

func (c *Playlist) Play() future.Future[struct{}] {
	p, ok := c.proxy("Play")
	if !ok {
		return notReady("Play")
	}
	return p.Play()
}

func (c *Playlist) Pause() future.Future[struct{}] {
	p, ok := c.proxy("Pause")
	if !ok {
		return notReady("Pause")
	}
	return p.Pause()
}

func (c *Playlist) Stop() future.Future[struct{}] {
	p, ok := c.proxy("Stop")
	if !ok {
		return notReady("Stop")
	}
	return p.Stop()
}

func (c *Playlist) Previous() future.Future[struct{}] {
	p, ok := c.proxy("Previous")
	if !ok {
		return notReady("Previous")
	}
	return p.Previous()
}

func (c *Playlist) Next() future.Future[struct{}] {
	p, ok := c.proxy("Next")
	if !ok {
		return notReady("Next")
	}
	return p.Next()
}

func (c *Playlist) Seek(seconds uint32) future.Future[struct{}] {
	p, ok := c.proxy("Seek")
	if !ok {
		return notReady("Seek")
	}
	return p.SeekSecondAbsolute(seconds)
}

func (c *Playlist) SetRepeat(v bool) future.Future[struct{}] {
	p, ok := c.proxy("SetRepeat")
	if !ok {
		return notReady("SetRepeat")
	}
	return p.SetRepeat(v)
}

func (c *Playlist) SetShuffle(v bool) future.Future[struct{}] {
	p, ok := c.proxy("SetShuffle")
	if !ok {
		return notReady("SetShuffle")
	}
	return p.SetShuffle(v)
}

func (c *Playlist) Dispose() {
	c.check("Dispose")
	if p, ok := c.req.Cancel(); ok {
		p.TransportState().RemoveWatcher(c.transportState)
		p.Shuffle().RemoveWatcher(c.shuffle)
		p.Repeat().RemoveWatcher(c.repeat)
		p.Dispose()
		c.caps.clear()
	}
	c.caps = nil
	c.disposed = true
}

var _ Controller = (*Playlist)(nil)
