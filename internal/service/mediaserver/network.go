package mediaserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"avtopology/internal/future"
	"avtopology/internal/media"
	"avtopology/internal/models"
	"avtopology/internal/service"
	"avtopology/internal/script"
	"avtopology/internal/transport"
)

// NewNetwork browses a remote server through the Browse action. Its
// descriptive properties arrive through events.
func NewNetwork(d *service.Device, tm *media.TagManager, c transport.Client, artworkBase string) *Service {
	s := newService(d, tm, Config{ArtworkBase: artworkBase})
	s.backend = &network{client: c, udn: d.Udn(), tm: tm}
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
	p.Text("Attributes", func(v string) { s.attributes = strings.Fields(v) })
	for prefix, info := range map[string]*Info{
		"Manufacturer": &s.manufacturer,
		"Model":        &s.model,
		"Product":      &s.product,
	} {
		p.Text(prefix+"ImageUri", func(v string) { info.ImageUri = v })
		p.Text(prefix+"Info", func(v string) { info.Info = v })
		p.Text(prefix+"Name", func(v string) { info.Name = v })
		p.Text(prefix+"Url", func(v string) { info.Url = v })
	}
}

type network struct {
	client transport.Client
	udn    string
	tm     *media.TagManager
}

// browse sends the datum in its JSON form; an empty Datum argument asks for
// the root menu. Result holds the listed data and AlphaMap, when present,
// the jump map.
func (n *network) browse(d *media.Datum) future.Future[result] {
	args := map[string]string{"Datum": ""}
	if d != nil {
		b, err := json.Marshal(d)
		if err != nil {
			return future.Resolved(result{}, fmt.Errorf("encoding datum: %w", err))
		}
		args["Datum"] = string(b)
	}
	return future.Map(service.Invoke(n.client, n.udn, Kind, "Browse", args), func(out map[string]string) (result, error) {
		data, err := media.DecodeData(n.tm, []byte(out["Result"]))
		if err != nil {
			return result{}, fmt.Errorf("%s Browse: %w", n.udn, err)
		}
		r := result{data: data}
		if raw, ok := out["AlphaMap"]; ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &r.alpha); err != nil {
				return result{}, fmt.Errorf("%s Browse alpha map: %w", n.udn, err)
			}
		}
		return r, nil
	})
}

func (n *network) artwork(album string) (Artwork, error) {
	return Artwork{}, fmt.Errorf("%s artwork for %q: %w", n.udn, album, models.ErrNotSupported)
}

func (n *network) execute(script.Command) error {
	return fmt.Errorf("%s mediaserver: scripting a network service: %w", n.udn, models.ErrNotSupported)
}
