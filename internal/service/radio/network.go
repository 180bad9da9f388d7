package radio

import (
	"encoding/json"
	"fmt"
	"strconv"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/transport"
)

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
	p.Uint("Id", s.id.Update)
	p.Uints("IdArray", s.idArray.Update)
	p.Text("TransportState", s.transportState.Update)
	p.Text("Metadata", s.metadata.Update)
	p.Text("Uri", s.uri.Update)
	p.Uint("ChannelsMax", func(v uint32) { s.channelsMax = v })
	p.Text("ProtocolInfo", func(v string) { s.protocolInfo = v })
}

type network struct {
	client transport.Client
	udn    string
}

func (n *network) call(action string, args map[string]string) future.Future[struct{}] {
	return service.Call(n.client, n.udn, Kind, action, args)
}

func (n *network) play() future.Future[struct{}]  { return n.call("Play", nil) }
func (n *network) pause() future.Future[struct{}] { return n.call("Pause", nil) }
func (n *network) stop() future.Future[struct{}]  { return n.call("Stop", nil) }

func (n *network) seekSecondAbsolute(s uint32) future.Future[struct{}] {
	return n.call("SeekSecondAbsolute", map[string]string{"Value": strconv.FormatUint(uint64(s), 10)})
}

func (n *network) seekSecondRelative(s int32) future.Future[struct{}] {
	return n.call("SeekSecondRelative", map[string]string{"Value": strconv.FormatInt(int64(s), 10)})
}

func (n *network) setId(id uint32, uri string) future.Future[struct{}] {
	return n.call("SetId", map[string]string{"Value": strconv.FormatUint(uint64(id), 10), "Uri": uri})
}

func (n *network) setChannel(uri, metadata string) future.Future[struct{}] {
	return n.call("SetChannel", map[string]string{"Uri": uri, "Metadata": metadata})
}

func (n *network) read(id uint32) future.Future[Channel] {
	out := service.Invoke(n.client, n.udn, Kind, "Read", map[string]string{"Id": strconv.FormatUint(uint64(id), 10)})
	return future.Map(out, func(out map[string]string) (Channel, error) {
		return Channel{Id: id, Uri: out["Uri"], Metadata: out["Metadata"]}, nil
	})
}

func (n *network) readList(ids []uint32) future.Future[[]Channel] {
	out := service.Invoke(n.client, n.udn, Kind, "ReadList", map[string]string{"IdList": service.FormatUints(ids)})
	return future.Map(out, func(out map[string]string) ([]Channel, error) {
		var channels []Channel
		if err := json.Unmarshal([]byte(out["ChannelList"]), &channels); err != nil {
			return nil, fmt.Errorf("%s radio.ReadList: decoding ChannelList: %w", n.udn, err)
		}
		return channels, nil
	})
}

func (n *network) execute(script.Command) error {
	return fmt.Errorf("%s radio: scripting a network service: %w", n.udn, models.ErrNotSupported)
}
