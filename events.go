// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stage

import (
	"fmt"

	"github.com/gogpu/stage/internal/event"
)

// EventKind identifies a frame notification.
type EventKind uint8

// Frame events, in the order a frame emits them.
const (
	// EventInvalidate fires before the first frame after Invalidate.
	EventInvalidate EventKind = iota
	// EventEnterFrame fires after the frame begins, before any node is
	// drawn.
	EventEnterFrame
	// EventExitFrame fires after the frame is submitted.
	EventExitFrame
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventInvalidate:
		return "invalidate"
	case EventEnterFrame:
		return "enterframe"
	case EventExitFrame:
		return "exitframe"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ListenerID identifies a registered listener.
type ListenerID = event.ID

// FrameEvent is the payload of every frame event.
type FrameEvent struct {
	Kind EventKind

	// Tick is the device frame tick of the frame.
	Tick uint64

	// Nodes is the number of nodes drawn. It is only set for
	// EventExitFrame.
	Nodes int
}
