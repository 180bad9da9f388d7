package product

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

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
	p.Text("ProductRoom", s.room.Update)
	p.Text("ProductName", s.name.Update)
	p.Uint("SourceIndex", s.sourceIndex.Update)
	p.Bool("Standby", s.standby.Update)
	p.Text("Attributes", func(v string) { s.attributes = v })
	p.Text("SourceList", func(v string) {
		var sources []models.Source
		if err := json.Unmarshal([]byte(v), &sources); err != nil {
			log.Warn().Err(err).Str("module", "service").Str("udn", s.Device().Udn()).Msg("ignoring unparseable source list")
			return
		}
		s.sources.Update(sources)
	})
	p.Text("ManufacturerName", func(v string) { s.info.ManufacturerName = v })
	p.Text("ManufacturerUrl", func(v string) { s.info.ManufacturerUrl = v })
	p.Text("ModelName", func(v string) { s.info.ModelName = v })
	p.Text("ModelInfo", func(v string) { s.info.ModelInfo = v })
	p.Text("ProductInfo", func(v string) { s.info.ProductInfo = v })
}

type network struct {
	client transport.Client
	udn    string
}

func (n *network) setSourceIndex(index uint32) future.Future[struct{}] {
	return service.Call(n.client, n.udn, Kind, "SetSourceIndex", map[string]string{"Value": strconv.FormatUint(uint64(index), 10)})
}

func (n *network) setStandby(v bool) future.Future[struct{}] {
	return service.Call(n.client, n.udn, Kind, "SetStandby", map[string]string{"Value": strconv.FormatBool(v)})
}

func (n *network) execute(script.Command) error {
	return fmt.Errorf("%s product: scripting a network service: %w", n.udn, models.ErrNotSupported)
}
