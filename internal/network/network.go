// Package network owns the devices of one topology and the scheduler they
// share.
package network

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"avtopology/internal/media"
	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/script"
	"avtopology/internal/service"
	"avtopology/internal/watch"
)

type Network struct {
	sched    scheduler.Scheduler
	tm       *media.TagManager
	devices  map[string]*service.Device
	udns     *watch.Value[[]string]
	disposed bool
}

func New(s scheduler.Scheduler, tm *media.TagManager) *Network {
	return &Network{
		sched:   s,
		tm:      tm,
		devices: make(map[string]*service.Device),
		udns:    watch.NewFunc(s, "Devices", []string{}, slices.Equal[[]string]),
	}
}

func (n *Network) Scheduler() scheduler.Scheduler { return n.sched }

func (n *Network) TagManager() *media.TagManager { return n.tm }

// Add registers d. Adding a udn twice panics.
func (n *Network) Add(d *service.Device) {
	n.check("Add")
	if _, ok := n.devices[d.Udn()]; ok {
		panic(fmt.Sprintf("network: Add: duplicate device %s", d.Udn()))
	}
	n.devices[d.Udn()] = d
	n.publish()
	log.Info().Str("module", "network").Str("udn", d.Udn()).Strs("services", kindNames(d)).Msg("device added")
}

// Remove disposes the device and forgets it.
func (n *Network) Remove(udn string) error {
	n.check("Remove")
	d, ok := n.devices[udn]
	if !ok {
		return fmt.Errorf("device %s: %w", udn, models.ErrNotFound)
	}
	delete(n.devices, udn)
	n.publish()
	d.Dispose()
	log.Info().Str("module", "network").Str("udn", udn).Msg("device removed")
	return nil
}

func (n *Network) Device(udn string) (*service.Device, bool) {
	n.check("Device")
	d, ok := n.devices[udn]
	return d, ok
}

// Devices is the sorted list of device udns.
func (n *Network) Devices() watch.Watchable[[]string] {
	n.check("Devices")
	return n.udns
}

// Execute runs "<udn> <service> <command> <values...>" against a mock
// device.
func (n *Network) Execute(line string) error {
	n.check("Execute")
	cmd, err := script.Parse(line)
	if err != nil {
		return err
	}
	// udns keep their case
	udn := strings.Fields(line)[0]
	d, ok := n.devices[udn]
	if !ok {
		return fmt.Errorf("device %s: %w", udn, models.ErrNotFound)
	}
	sub, err := cmd.Shift()
	if err != nil {
		return err
	}
	return d.Execute(sub)
}

// Dispose disposes every device. No proxy may be live.
func (n *Network) Dispose() {
	n.check("Dispose")
	for _, udn := range slices.Sorted(maps.Keys(n.devices)) {
		n.devices[udn].Dispose()
	}
	n.devices = nil
	n.udns.Dispose()
	n.disposed = true
}

func (n *Network) publish() {
	n.udns.Update(slices.Sorted(maps.Keys(n.devices)))
}

func (n *Network) check(op string) {
	if n.disposed {
		panic(fmt.Sprintf("network: %s: used after dispose", op))
	}
	n.sched.Assert()
}

func kindNames(d *service.Device) []string {
	var out []string
	for _, k := range d.Kinds() {
		out = append(out, string(k))
	}
	return out
}
