// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import "fmt"

// State is the load state of a Base.
type State uint8

// Load states.
const (
	// StateEmpty means no source has been assigned yet.
	StateEmpty State = iota
	// StateLoading means an asynchronous load is in flight.
	StateLoading
	// StateReady means pixels are available for upload.
	StateReady
	// StateErrored means loading failed; the texture is never drawn.
	StateErrored
	// StateDestroyed means the texture was destroyed and must not be used.
	StateDestroyed
)

var stateNames = [...]string{
	StateEmpty:     "Empty",
	StateLoading:   "Loading",
	StateReady:     "Ready",
	StateErrored:   "Errored",
	StateDestroyed: "Destroyed",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventKind identifies a texture notification.
type EventKind uint8

// Texture events.
const (
	// EventUpdate fires when pixels or dimensions change.
	EventUpdate EventKind = iota
	// EventLoaded fires once when an asynchronous load succeeds.
	EventLoaded
	// EventError fires once when a load fails.
	EventError
	// EventDispose fires when the texture is destroyed.
	EventDispose
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventLoaded:
		return "loaded"
	case EventError:
		return "error"
	case EventDispose:
		return "dispose"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to texture listeners.
type Event struct {
	Kind EventKind
	Base *Base
	// Err is set for EventError.
	Err error
}
