package service

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/script"
)

// Device is a network endpoint identified by its UDN, holding at most one
// Service per kind.
type Device struct {
	udn      string
	sched    scheduler.Scheduler
	services map[models.ServiceKind]Service
	disposed bool
}

func NewDevice(s scheduler.Scheduler, udn string) *Device {
	return &Device{
		udn:      udn,
		sched:    s,
		services: make(map[models.ServiceKind]Service),
	}
}

func (d *Device) Udn() string {
	return d.udn
}

func (d *Device) Scheduler() scheduler.Scheduler {
	return d.sched
}

// Add registers a service. Registering a second service of the same kind
// panics.
func (d *Device) Add(svc Service) {
	if _, ok := d.services[svc.Kind()]; ok {
		panic(fmt.Sprintf("service: device %s already has a %s service", d.udn, svc.Kind()))
	}
	d.services[svc.Kind()] = svc
}

func (d *Device) Has(kind models.ServiceKind) bool {
	_, ok := d.services[kind]
	return ok
}

func (d *Device) Service(kind models.ServiceKind) (Service, bool) {
	svc, ok := d.services[kind]
	return svc, ok
}

// Kinds lists the device's services in name order.
func (d *Device) Kinds() []models.ServiceKind {
	kinds := make([]models.ServiceKind, 0, len(d.services))
	for k := range d.services {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Create asks the service of the given kind for a proxy.
func (d *Device) Create(kind models.ServiceKind, cb func(Proxy)) error {
	d.check("Create")
	svc, ok := d.services[kind]
	if !ok {
		return fmt.Errorf("device %s has no %s service: %w", d.udn, kind, models.ErrNotFound)
	}
	svc.Create(cb)
	return nil
}

// Create is the typed form of Device.Create.
func Create[P Proxy](d *Device, kind models.ServiceKind, cb func(P)) error {
	return d.Create(kind, func(p Proxy) {
		cb(p.(P))
	})
}

// Execute routes "<service> <command...>" to the named service.
func (d *Device) Execute(cmd script.Command) error {
	d.check("Execute")
	kind, err := models.ParseServiceKind(cmd.Name)
	if err != nil {
		return err
	}
	svc, ok := d.services[kind]
	if !ok {
		return fmt.Errorf("device %s has no %s service: %w", d.udn, kind, models.ErrNotFound)
	}
	sub, err := cmd.Shift()
	if err != nil {
		return err
	}
	return svc.Execute(sub)
}

// Dispose disposes every service. Each must have no live proxies.
func (d *Device) Dispose() {
	d.check("Dispose")
	for _, k := range d.Kinds() {
		d.services[k].Dispose()
	}
	d.disposed = true
	log.Debug().Str("module", "service").Str("udn", d.udn).Msg("device disposed")
}

func (d *Device) check(op string) {
	if d.disposed {
		panic(fmt.Sprintf("service: %s: device %s used after dispose", op, d.udn))
	}
	d.sched.Assert()
}
