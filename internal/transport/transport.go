// Package transport is the boundary to the control-point network. The core
// only relies on two things from it: a property event stream per service
// whose first event carries every starting value, and synchronous actions
// returning typed outputs or failing.
package transport

import "context"

// Event carries property values of one service. Values are the raw wire
// strings; each capability parses the ones it exposes.
type Event struct {
	Udn        string            `json:"udn"`
	Service    string            `json:"service"`
	Seq        uint64            `json:"seq"`
	Properties map[string]string `json:"properties"`
}

// Client is implemented by transports able to reach real devices.
type Client interface {
	// Subscribe starts streaming events for one service of one device to
	// handler and returns without waiting for the first one. Streaming stops
	// when ctx is cancelled. The first event delivered is the initial event.
	// The handler is called from a transport goroutine.
	Subscribe(ctx context.Context, udn, service string, handler func(Event)) error

	// Invoke calls an action and returns its outputs.
	Invoke(ctx context.Context, udn, service, action string, args map[string]string) (map[string]string, error)
}
