package service

import (
	"fmt"

	"avtopology/internal/models"
)

// Handle is the part of a proxy the lifecycle owns. Capability proxies embed
// it and get Kind, Device and Dispose from it.
type Handle struct {
	base     *Base
	disposed bool
}

func (h *Handle) Kind() models.ServiceKind {
	return h.base.kind
}

func (h *Handle) Device() *Device {
	return h.base.device
}

// Dispose releases the proxy's reference on its service. A second call panics.
func (h *Handle) Dispose() {
	if h.disposed {
		panic(fmt.Sprintf("service: proxy %s(%s) disposed twice", h.base.kind, h.base.device.udn))
	}
	h.disposed = true
	h.base.release()
}

// Check panics when the proxy is used after Dispose or outside the scheduler.
func (h *Handle) Check(op string) {
	if h.disposed {
		panic(fmt.Sprintf("service: %s: proxy %s(%s) used after dispose", op, h.base.kind, h.base.device.udn))
	}
	h.base.device.sched.Assert()
}
