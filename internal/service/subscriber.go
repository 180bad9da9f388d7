package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"avtopology/internal/scheduler"
	"avtopology/internal/transport"
)

// MockSubscriber completes the handshake on the next scheduler turn. Mock
// values are already in place, so there is nothing to apply.
type MockSubscriber struct{}

func (MockSubscriber) Subscribe(ready func(apply func())) {
	ready(func() {})
}

func (MockSubscriber) Unsubscribe() {}

// NetworkSubscriber subscribes to a service through a transport client.
// Apply is called from the scheduler context with every event's properties:
// once for the initial event, then for each change while subscribed.
type NetworkSubscriber struct {
	Client  transport.Client
	Sched   scheduler.Scheduler
	Udn     string
	Service string
	Apply   func(props map[string]string)

	active *subscription
}

type subscription struct {
	cancel context.CancelFunc
	live   bool // touched only from the scheduler context
}

func (n *NetworkSubscriber) Subscribe(ready func(apply func())) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, live: true}
	n.active = sub

	var once sync.Once
	err := n.Client.Subscribe(ctx, n.Udn, n.Service, func(ev transport.Event) {
		first := false
		once.Do(func() { first = true })
		if first {
			ready(func() { n.Apply(ev.Properties) })
			return
		}
		n.Sched.Schedule(func() {
			if sub.live {
				n.Apply(ev.Properties)
			}
		})
	})
	if err != nil {
		// the service stays pending; transport owns reporting and retrying
		log.Error().Err(err).Str("module", "service").Str("udn", n.Udn).Str("service", n.Service).Msg("subscribe failed")
	}
}

func (n *NetworkSubscriber) Unsubscribe() {
	if n.active == nil {
		return
	}
	n.active.live = false
	n.active.cancel()
	n.active = nil
}
