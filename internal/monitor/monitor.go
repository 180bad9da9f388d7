// Package monitor follows every zone of a network and fans its state out to
// channel subscribers.
package monitor

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/network"
	"avtopology/internal/service/product"
	"avtopology/internal/watch"
)

// DefaultInterval is how often the current snapshot is re-sent to
// subscribers when nothing changes.
const DefaultInterval = 15 * time.Second

type Monitor struct {
	net      *network.Network
	interval time.Duration

	// scheduler context only
	zones   map[string]*zone
	devices *watch.Funcs[[]string]

	mu      sync.RWMutex
	current []models.ZoneState

	subMu       sync.Mutex
	subscribers map[chan []models.ZoneState]struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

func New(n *network.Network, opts ...Option) *Monitor {
	m := &Monitor{
		net:         n,
		interval:    DefaultInterval,
		zones:       make(map[string]*zone),
		current:     []models.ZoneState{},
		subscribers: make(map[chan []models.ZoneState]struct{}),
	}
	m.devices = watch.OnChange(m.sync)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start attaches to the network and begins the heartbeat.
func (m *Monitor) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		ctx, m.cancel = context.WithCancel(ctx)
		m.done = make(chan struct{})
		m.net.Scheduler().Execute(func() {
			m.net.Devices().AddWatcher(m.devices)
		})
		go m.run(ctx)
	})
}

// Stop releases every proxy the monitor holds. It must be called before the
// network is disposed.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.stopOnce.Do(func() {
		m.cancel()
		<-m.done
		m.net.Scheduler().Execute(func() {
			m.net.Devices().RemoveWatcher(m.devices)
			for _, udn := range slices.Sorted(maps.Keys(m.zones)) {
				m.zones[udn].close()
				delete(m.zones, udn)
			}
		})
	})
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.publish(m.Current())
		}
	}
}

// Current returns the last published snapshot, sorted by udn.
func (m *Monitor) Current() []models.ZoneState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.current)
}

func (m *Monitor) Zone(udn string) (models.ZoneState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.current, func(z models.ZoneState) bool { return z.Udn == udn })
	if i < 0 {
		return models.ZoneState{}, false
	}
	return m.current[i], true
}

func (m *Monitor) Subscribe() chan []models.ZoneState {
	ch := make(chan []models.ZoneState, 1)
	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

func (m *Monitor) Unsubscribe(ch chan []models.ZoneState) {
	m.subMu.Lock()
	_, exists := m.subscribers[ch]
	delete(m.subscribers, ch)
	m.subMu.Unlock()
	if exists {
		close(ch)
	}
}

// Transport runs a transport command against the current source of a zone
// and waits for it to complete. Commands are play, pause, stop, next and
// previous.
func (m *Monitor) Transport(ctx context.Context, udn, op string) error {
	var (
		f   future.Future[struct{}]
		err error
	)
	m.net.Scheduler().Execute(func() {
		z, ok := m.zones[udn]
		if !ok {
			err = fmt.Errorf("zone %s: %w", udn, models.ErrNotFound)
			return
		}
		f, err = z.transport(op)
	})
	if err != nil {
		return err
	}
	_, err = f.Wait(ctx)
	return err
}

// sync matches the zones to the device list. Removed devices are still
// intact when the list changes, so their proxies can be released here.
func (m *Monitor) sync(udns []string) {
	for udn, z := range m.zones {
		if !slices.Contains(udns, udn) {
			z.close()
			delete(m.zones, udn)
			log.Debug().Str("module", "monitor").Str("udn", udn).Msg("zone removed")
		}
	}
	for _, udn := range udns {
		if _, ok := m.zones[udn]; ok {
			continue
		}
		d, ok := m.net.Device(udn)
		if !ok || !d.Has(product.Kind) {
			continue
		}
		z, err := newZone(m, d)
		if err != nil {
			log.Warn().Err(err).Str("module", "monitor").Str("udn", udn).Msg("cannot follow zone")
			continue
		}
		m.zones[udn] = z
		log.Debug().Str("module", "monitor").Str("udn", udn).Msg("zone added")
	}
	m.refresh()
}

// refresh rebuilds the snapshot from every ready zone and publishes it.
func (m *Monitor) refresh() {
	snapshot := make([]models.ZoneState, 0, len(m.zones))
	for _, udn := range slices.Sorted(maps.Keys(m.zones)) {
		if z := m.zones[udn]; z.ready {
			snapshot = append(snapshot, z.state)
		}
	}
	m.mu.Lock()
	unchanged := slices.Equal(m.current, snapshot)
	m.current = snapshot
	m.mu.Unlock()
	if !unchanged {
		m.publish(slices.Clone(snapshot))
	}
}

func (m *Monitor) publish(snapshot []models.ZoneState) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
