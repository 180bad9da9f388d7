package service

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/script"
)

// Service is the shared, per-device instance of one capability.
type Service interface {
	Kind() models.ServiceKind
	State() models.ServiceState

	// Create asynchronously delivers a new proxy to cb once the service is
	// subscribed. Must be called from the scheduler context.
	Create(cb func(Proxy))

	// Execute applies a scripting command to a mock service.
	Execute(cmd script.Command) error

	// Dispose tears the service down. It panics while proxies are live.
	Dispose()
}

// Proxy is a per-consumer handle onto a Service.
type Proxy interface {
	Kind() models.ServiceKind
	Device() *Device
	Dispose()
}

// Subscriber performs the subscription handshake for a service.
//
// Subscribe is called from the scheduler context. The subscriber must call
// ready exactly once, from any goroutine, passing a function that applies the
// starting values; Base runs it inside the scheduler context, or drops it if
// the subscription was abandoned meanwhile.
type Subscriber interface {
	Subscribe(ready func(apply func()))
	Unsubscribe()
}

// Base implements the subscription state machine and proxy reference count
// shared by every capability. Capabilities embed it.
type Base struct {
	device     *Device
	kind       models.ServiceKind
	subscriber Subscriber
	newProxy   func(h *Handle) Proxy

	state    models.ServiceState
	gen      int
	proxies  int
	pending  []func(Proxy)
	disposed bool
}

// NewBase wires a capability into the lifecycle. newProxy builds the
// capability's proxy around a handle.
func NewBase(d *Device, kind models.ServiceKind, sub Subscriber, newProxy func(h *Handle) Proxy) Base {
	return Base{
		device:     d,
		kind:       kind,
		subscriber: sub,
		newProxy:   newProxy,
		state:      models.StateUnsubscribed,
	}
}

func (b *Base) Kind() models.ServiceKind {
	return b.kind
}

func (b *Base) Device() *Device {
	return b.device
}

func (b *Base) Scheduler() scheduler.Scheduler {
	return b.device.sched
}

func (b *Base) State() models.ServiceState {
	b.check("State")
	return b.state
}

// Proxies reports the number of live proxies.
func (b *Base) Proxies() int {
	b.check("Proxies")
	return b.proxies
}

func (b *Base) Create(cb func(Proxy)) {
	b.check("Create")

	switch b.state {
	case models.StateUnsubscribed:
		b.pending = append(b.pending, cb)
		b.subscribe()
	case models.StatePendingSubscription:
		b.pending = append(b.pending, cb)
	case models.StateSubscribed:
		p := b.acquire()
		b.device.sched.Schedule(func() {
			cb(p)
		})
	default:
		panic(fmt.Sprintf("service: Create: %s(%s) in state %s", b.kind, b.device.udn, b.state))
	}
}

// Dispose asserts that no proxy is live and releases the subscription.
// Callbacks still waiting for a pending subscription are dropped.
func (b *Base) Dispose() {
	b.check("Dispose")
	if b.proxies != 0 {
		panic(fmt.Sprintf("service: Dispose: %s(%s) has %d live proxies", b.kind, b.device.udn, b.proxies))
	}

	if b.state == models.StatePendingSubscription {
		if len(b.pending) > 0 {
			log.Warn().Str("module", "service").Str("udn", b.device.udn).Str("service", string(b.kind)).
				Int("callbacks", len(b.pending)).Msg("disposed with pending create callbacks")
		}
		b.pending = nil
		b.unsubscribe()
	}
	b.disposed = true
}

func (b *Base) subscribe() {
	b.state = models.StatePendingSubscription
	b.gen++
	gen := b.gen

	log.Debug().Str("module", "service").Str("udn", b.device.udn).Str("service", string(b.kind)).Msg("subscribing")

	b.subscriber.Subscribe(func(apply func()) {
		b.device.sched.Schedule(func() {
			b.initialEvent(gen, apply)
		})
	})
}

func (b *Base) initialEvent(gen int, apply func()) {
	if b.disposed || gen != b.gen || b.state != models.StatePendingSubscription {
		// abandoned subscription; the subscriber has already been released
		return
	}

	apply()
	b.state = models.StateSubscribed

	log.Debug().Str("module", "service").Str("udn", b.device.udn).Str("service", string(b.kind)).
		Int("callbacks", len(b.pending)).Msg("subscribed")

	pending := b.pending
	b.pending = nil
	for _, cb := range pending {
		cb(b.acquire())
	}
}

func (b *Base) unsubscribe() {
	b.state = models.StateUnsubscribing
	b.subscriber.Unsubscribe()
	b.state = models.StateUnsubscribed

	log.Debug().Str("module", "service").Str("udn", b.device.udn).Str("service", string(b.kind)).Msg("unsubscribed")
}

func (b *Base) acquire() Proxy {
	b.proxies++
	return b.newProxy(&Handle{base: b})
}

func (b *Base) release() {
	b.check("release")
	if b.proxies <= 0 {
		panic(fmt.Sprintf("service: release: %s(%s) has no live proxies", b.kind, b.device.udn))
	}
	b.proxies--
	if b.proxies == 0 && b.state == models.StateSubscribed {
		b.unsubscribe()
	}
}

func (b *Base) check(op string) {
	if b.disposed {
		panic(fmt.Sprintf("service: %s: %s(%s) used after dispose", op, b.kind, b.device.udn))
	}
	b.device.sched.Assert()
}
