package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")
var ErrNotImplemented = errors.New("not implemented")
var ErrNotSupported = errors.New("not supported")

// ErrDisposed is returned by asynchronous operations whose owner went away
// before they completed.
var ErrDisposed = errors.New("disposed")

// ErrNotReady is returned by commands issued before the capability they
// drive has been delivered.
var ErrNotReady = errors.New("not ready")

// ServiceKind identifies a device capability. Services are keyed by kind on
// their device; there is exactly one service per kind per device.
type ServiceKind string

const (
	ServiceProduct     ServiceKind = "product"
	ServiceVolume      ServiceKind = "volume"
	ServicePlaylist    ServiceKind = "playlist"
	ServiceRadio       ServiceKind = "radio"
	ServiceMediaServer ServiceKind = "mediaserver"
)

func (k ServiceKind) Valid() bool {
	switch k {
	case ServiceProduct, ServiceVolume, ServicePlaylist, ServiceRadio, ServiceMediaServer:
		return true
	}
	return false
}

// ParseServiceKind accepts a service name in any letter case.
func ParseServiceKind(s string) (ServiceKind, error) {
	k := ServiceKind(strings.ToLower(s))
	if !k.Valid() {
		return "", fmt.Errorf("service %q: %w", s, ErrNotSupported)
	}
	return k, nil
}

// ServiceState is the subscription state of a service on its device.
type ServiceState int

const (
	StateUnsubscribed ServiceState = iota
	StatePendingSubscription
	StateSubscribed
	StateUnsubscribing
)

func (s ServiceState) String() string {
	switch s {
	case StateUnsubscribed:
		return "unsubscribed"
	case StatePendingSubscription:
		return "pending"
	case StateSubscribed:
		return "subscribed"
	case StateUnsubscribing:
		return "unsubscribing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	TransportStatePlaying   = "Playing"
	TransportStatePaused    = "Paused"
	TransportStateStopped   = "Stopped"
	TransportStateBuffering = "Buffering"
)

// Source describes one entry of a product's source list.
type Source struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

const (
	SourceTypePlaylist = "Playlist"
	SourceTypeRadio    = "Radio"
	SourceTypeUpnpAv   = "UpnpAv"
	SourceTypeReceiver = "Receiver"
	SourceTypeNetAux   = "NetAux"
)

// ZoneState is the externally visible state of one rendering device.
type ZoneState struct {
	Udn            string `json:"udn"`
	Room           string `json:"room"`
	Name           string `json:"name"`
	Source         string `json:"source"`
	Standby        bool   `json:"standby"`
	Volume         uint32 `json:"volume"`
	Mute           bool   `json:"mute"`
	TransportState string `json:"transport_state"`
}

// Metadatum is one tag of a stored track. Tag is a full tag name such as
// "audio.artist"; a bare name is read from the audio namespace.
type Metadatum struct {
	Tag    string   `json:"tag"`
	Values []string `json:"values"`
}

// Track is the storage form of a library item, in library order.
type Track struct {
	ID       int64       `json:"id,omitempty"`
	Metadata []Metadatum `json:"metadata"`
}
