// Package product implements the product capability: room and product
// naming, the source list and standby.
package product

import (
	"fmt"
	"slices"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/watch"
)

const Kind = models.ServiceProduct

// Info is the static description of a product.
type Info struct {
	ManufacturerName string `json:"manufacturer_name"`
	ManufacturerUrl  string `json:"manufacturer_url"`
	ModelName        string `json:"model_name"`
	ModelInfo        string `json:"model_info"`
	ProductName      string `json:"product_name"`
	ProductInfo      string `json:"product_info"`
}

type Config struct {
	Room        string
	Name        string
	SourceIndex uint32
	Sources     []models.Source
	Standby     bool
	Attributes  string
	Info        Info
}

// DefaultSources is the source list of a typical streamer.
func DefaultSources() []models.Source {
	return []models.Source{
		{Name: "Playlist", Type: models.SourceTypePlaylist, Visible: true},
		{Name: "Radio", Type: models.SourceTypeRadio, Visible: true},
		{Name: "UPnP AV", Type: models.SourceTypeUpnpAv, Visible: false},
		{Name: "Songcast", Type: models.SourceTypeReceiver, Visible: true},
		{Name: "Net Aux", Type: models.SourceTypeNetAux, Visible: false},
	}
}

func DefaultConfig() Config {
	return Config{
		Room:       "Main Room",
		Name:       "Mock DS",
		Sources:    DefaultSources(),
		Standby:    true,
		Attributes: "Info Time Volume Sender",
		Info: Info{
			ManufacturerName: "OpenHome",
			ManufacturerUrl:  "http://www.openhome.org",
			ModelName:        "Mock DS",
			ModelInfo:        "Network music player",
			ProductName:      "Mock DS",
			ProductInfo:      "Network music player",
		},
	}
}

type backend interface {
	setSourceIndex(index uint32) future.Future[struct{}]
	setStandby(v bool) future.Future[struct{}]
	execute(cmd script.Command) error
}

type Service struct {
	service.Base
	backend backend

	room        *watch.Value[string]
	name        *watch.Value[string]
	sourceIndex *watch.Value[uint32]
	sources     *watch.Value[[]models.Source]
	standby     *watch.Value[bool]

	attributes string
	info       Info
}

func newService(d *service.Device, cfg Config) *Service {
	s := d.Scheduler()
	id := func(name string) string {
		return fmt.Sprintf("%s(%s)", name, d.Udn())
	}
	return &Service{
		room:        watch.New(s, id("Room"), cfg.Room),
		name:        watch.New(s, id("Name"), cfg.Name),
		sourceIndex: watch.New(s, id("SourceIndex"), cfg.SourceIndex),
		sources:     watch.NewFunc(s, id("Sources"), cfg.Sources, slices.Equal[[]models.Source]),
		standby:     watch.New(s, id("Standby"), cfg.Standby),
		attributes:  cfg.Attributes,
		info:        cfg.Info,
	}
}

func (s *Service) newProxy(h *service.Handle) service.Proxy {
	return &Proxy{Handle: h, svc: s}
}

func (s *Service) Execute(cmd script.Command) error {
	return s.backend.execute(cmd)
}

func (s *Service) Dispose() {
	s.Base.Dispose()

	s.room.Dispose()
	s.name.Dispose()
	s.sourceIndex.Dispose()
	s.sources.Dispose()
	s.standby.Dispose()
}

type Proxy struct {
	*service.Handle
	svc *Service
}

func (p *Proxy) Room() watch.Watchable[string] {
	p.Check("Room")
	return p.svc.room
}

func (p *Proxy) Name() watch.Watchable[string] {
	p.Check("Name")
	return p.svc.name
}

func (p *Proxy) SourceIndex() watch.Watchable[uint32] {
	p.Check("SourceIndex")
	return p.svc.sourceIndex
}

func (p *Proxy) Sources() watch.Watchable[[]models.Source] {
	p.Check("Sources")
	return p.svc.sources
}

func (p *Proxy) Standby() watch.Watchable[bool] {
	p.Check("Standby")
	return p.svc.standby
}

// Attributes lists the product's optional services, space separated.
func (p *Proxy) Attributes() string {
	p.Check("Attributes")
	return p.svc.attributes
}

func (p *Proxy) Info() Info {
	p.Check("Info")
	return p.svc.info
}

// Source returns the currently selected source.
func (p *Proxy) Source() (models.Source, bool) {
	p.Check("Source")
	return current(p.svc.sources.Value(), p.svc.sourceIndex.Value())
}

func (p *Proxy) SetSourceIndex(index uint32) future.Future[struct{}] {
	p.Check("SetSourceIndex")
	return p.svc.backend.setSourceIndex(index)
}

// SetSourceIndexByName selects the first source with the given name.
func (p *Proxy) SetSourceIndexByName(name string) future.Future[struct{}] {
	p.Check("SetSourceIndexByName")
	i := slices.IndexFunc(p.svc.sources.Value(), func(s models.Source) bool {
		return s.Name == name
	})
	if i < 0 {
		return future.Resolved(struct{}{}, fmt.Errorf("source %q: %w", name, models.ErrNotFound))
	}
	return p.svc.backend.setSourceIndex(uint32(i))
}

func (p *Proxy) SetStandby(v bool) future.Future[struct{}] {
	p.Check("SetStandby")
	return p.svc.backend.setStandby(v)
}

func current(sources []models.Source, index uint32) (models.Source, bool) {
	if int(index) >= len(sources) {
		return models.Source{}, false
	}
	return sources[index], true
}

var _ service.Service = (*Service)(nil)
var _ service.Proxy = (*Proxy)(nil)
