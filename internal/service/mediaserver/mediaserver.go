// Package mediaserver implements the media server capability: browse
// sessions over a track library plus the artwork contract.
package mediaserver

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/media"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
)

const Kind = models.ServiceMediaServer

// Info describes one of the manufacturer, model or product of a server.
type Info struct {
	ImageUri string `json:"image_uri"`
	Info     string `json:"info"`
	Name     string `json:"name"`
	Url      string `json:"url"`
}

type Config struct {
	Attributes   []string
	Manufacturer Info
	Model        Info
	Product      Info
	// ArtworkBase prefixes artwork URIs. Empty disables artwork.
	ArtworkBase string
	Tracks      []*media.Metadata
}

func DefaultConfig() Config {
	openhome := Info{Name: "OpenHome", Info: "OpenHome", Url: "http://www.openhome.org"}
	return Config{
		Attributes:   []string{"Browse", "Link", "Link:audio.artist", "Link:audio.album", "Link:audio.genre", "Search"},
		Manufacturer: openhome,
		Model:        openhome,
		Product:      Info{Name: "Mock", Info: "Mock", Url: "http://www.openhome.org"},
	}
}

// Artwork names the album an artwork image stands for.
type Artwork struct {
	Artist string
	Title  string
}

type result struct {
	data  []*media.Datum
	alpha []media.AlphaEntry
}

type backend interface {
	browse(d *media.Datum) future.Future[result]
	artwork(album string) (Artwork, error)
	execute(cmd script.Command) error
}

type Service struct {
	service.Base
	backend backend
	tm      *media.TagManager

	attributes   []string
	manufacturer Info
	model        Info
	product      Info
	artworkBase  string

	sessions map[string]*Session
}

func newService(d *service.Device, tm *media.TagManager, cfg Config) *Service {
	return &Service{
		tm:           tm,
		attributes:   slices.Clone(cfg.Attributes),
		manufacturer: cfg.Manufacturer,
		model:        cfg.Model,
		product:      cfg.Product,
		artworkBase:  cfg.ArtworkBase,
		sessions:     make(map[string]*Session),
	}
}

func (s *Service) newProxy(h *service.Handle) service.Proxy {
	return &Proxy{Handle: h, svc: s}
}

func (s *Service) Execute(cmd script.Command) error {
	return s.backend.execute(cmd)
}

// Sessions reports the number of live sessions.
func (s *Service) Sessions() int {
	s.Scheduler().Assert()
	return len(s.sessions)
}

// Dispose asserts that every proxy and every session has been released.
func (s *Service) Dispose() {
	s.Scheduler().Assert()
	if n := len(s.sessions); n != 0 {
		panic(fmt.Sprintf("mediaserver: Dispose: %s has %d live sessions", s.Device().Udn(), n))
	}
	s.Base.Dispose()
}

func (s *Service) createSession() *Session {
	sess := &Session{svc: s, id: uuid.NewString()}
	s.sessions[sess.id] = sess
	log.Debug().Str("module", "mediaserver").Str("udn", s.Device().Udn()).Str("session", sess.id).Msg("session created")
	return sess
}

func (s *Service) removeSession(sess *Session) {
	delete(s.sessions, sess.id)
	log.Debug().Str("module", "mediaserver").Str("udn", s.Device().Udn()).Str("session", sess.id).Msg("session disposed")
}

type Proxy struct {
	*service.Handle
	svc *Service
}

func (p *Proxy) TagManager() *media.TagManager {
	return p.svc.tm
}

func (p *Proxy) Attributes() []string {
	p.Check("Attributes")
	return slices.Clone(p.svc.attributes)
}

func (p *Proxy) Manufacturer() Info {
	p.Check("Manufacturer")
	return p.svc.manufacturer
}

func (p *Proxy) Model() Info {
	p.Check("Model")
	return p.svc.model
}

func (p *Proxy) Product() Info {
	p.Check("Product")
	return p.svc.product
}

// CreateSession opens a browse session. The session outlives the proxy and
// must be disposed by its caller.
func (p *Proxy) CreateSession() future.Future[*Session] {
	p.Check("CreateSession")
	return service.Local(p.svc.Scheduler(), func() (*Session, error) {
		return p.svc.createSession(), nil
	})
}

// ArtworkURI is the artwork location of a track, if it has an album.
func (p *Proxy) ArtworkURI(m *media.Metadata) (string, bool) {
	p.Check("ArtworkURI")
	if p.svc.artworkBase == "" {
		return "", false
	}
	return media.ArtworkURI(p.svc.artworkBase, p.svc.tm, m)
}

// ArtworkIdentity finds the album artist and title that artwork for album
// depicts.
func (p *Proxy) ArtworkIdentity(album string) (Artwork, error) {
	p.Check("ArtworkIdentity")
	return p.svc.backend.artwork(album)
}

var _ service.Service = (*Service)(nil)
var _ service.Proxy = (*Proxy)(nil)
