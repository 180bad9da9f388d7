package volume

import (
	"fmt"
	"strconv"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/transport"
)

// NewNetwork creates a volume service backed by a real device. Values are
// zero until the initial event arrives.
func NewNetwork(d *service.Device, c transport.Client) *Service {
	s := newService(d, Config{})
	s.backend = &network{client: c, udn: d.Udn()}
	s.Base = service.NewBase(d, Kind, &service.NetworkSubscriber{
		Client:  c,
		Sched:   d.Scheduler(),
		Udn:     d.Udn(),
		Service: string(Kind),
		Apply:   s.apply,
	}, s.newProxy)
	return s
}

func (s *Service) apply(raw map[string]string) {
	p := service.Props(raw)
	p.Int("Balance", s.balance.Update)
	p.Uint("BalanceMax", s.balanceMax.Update)
	p.Int("Fade", s.fade.Update)
	p.Uint("FadeMax", s.fadeMax.Update)
	p.Bool("Mute", s.mute.Update)
	p.Uint("Volume", s.value.Update)
	p.Uint("VolumeLimit", s.limit.Update)
	p.Uint("VolumeMax", s.max.Update)
	p.Uint("VolumeMilliDbPerStep", s.milliDbPerStep.Update)
	p.Uint("VolumeSteps", s.steps.Update)
	p.Uint("VolumeUnity", s.unity.Update)
}

type network struct {
	client transport.Client
	udn    string
}

func (n *network) call(action string, args map[string]string) future.Future[struct{}] {
	return service.Call(n.client, n.udn, Kind, action, args)
}

func (n *network) setBalance(v int32) future.Future[struct{}] {
	return n.call("SetBalance", map[string]string{"Value": strconv.FormatInt(int64(v), 10)})
}

func (n *network) setFade(v int32) future.Future[struct{}] {
	return n.call("SetFade", map[string]string{"Value": strconv.FormatInt(int64(v), 10)})
}

func (n *network) setMute(v bool) future.Future[struct{}] {
	return n.call("SetMute", map[string]string{"Value": strconv.FormatBool(v)})
}

func (n *network) setVolume(v uint32) future.Future[struct{}] {
	return n.call("SetVolume", map[string]string{"Value": strconv.FormatUint(uint64(v), 10)})
}

func (n *network) volumeInc() future.Future[struct{}] {
	return n.call("VolumeInc", nil)
}

func (n *network) volumeDec() future.Future[struct{}] {
	return n.call("VolumeDec", nil)
}

func (n *network) execute(cmd script.Command) error {
	return fmt.Errorf("%s volume: scripting a network service: %w", n.udn, models.ErrNotSupported)
}
