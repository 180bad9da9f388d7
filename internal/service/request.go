package service

import (
	"fmt"

	"avtopology/internal/models"
)

type RequestState int

const (
	RequestPending RequestState = iota
	RequestActive
	RequestCancelledBeforeActive
	RequestReleased
)

func (s RequestState) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestActive:
		return "active"
	case RequestCancelledBeforeActive:
		return "cancelled-before-active"
	case RequestReleased:
		return "released"
	default:
		return fmt.Sprintf("RequestState(%d)", int(s))
	}
}

// ProxyRequest tracks an outstanding Create on behalf of a component that
// may be torn down before the proxy arrives. A proxy delivered after Cancel
// is disposed immediately instead of being handed to the component.
type ProxyRequest[P Proxy] struct {
	state    RequestState
	proxy    P
	activate func(P)
}

// Request creates a proxy of the given kind and calls activate with it,
// unless the request is cancelled first.
func Request[P Proxy](d *Device, kind models.ServiceKind, activate func(P)) (*ProxyRequest[P], error) {
	r := &ProxyRequest[P]{activate: activate}
	if err := Create(d, kind, r.deliver); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ProxyRequest[P]) State() RequestState {
	return r.state
}

// Proxy returns the active proxy.
func (r *ProxyRequest[P]) Proxy() (P, bool) {
	return r.proxy, r.state == RequestActive
}

// Cancel ends the request. When the proxy was already active it is returned
// to the caller, which owns disposing it.
func (r *ProxyRequest[P]) Cancel() (P, bool) {
	var zero P
	switch r.state {
	case RequestPending:
		r.state = RequestCancelledBeforeActive
		return zero, false
	case RequestActive:
		p := r.proxy
		r.proxy = zero
		r.state = RequestReleased
		return p, true
	default:
		panic(fmt.Sprintf("service: ProxyRequest cancelled in state %s", r.state))
	}
}

func (r *ProxyRequest[P]) deliver(p P) {
	switch r.state {
	case RequestPending:
		r.state = RequestActive
		r.proxy = p
		r.activate(p)
	case RequestCancelledBeforeActive:
		p.Dispose()
	default:
		panic(fmt.Sprintf("service: ProxyRequest delivered in state %s", r.state))
	}
}
