// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package event provides a small typed event emitter.
//
// Emitters are not safe for concurrent use; they belong to the render
// goroutine like everything else they notify about.
package event

// ID identifies a registered listener.
type ID uint64

type listener[P any] struct {
	id   ID
	fn   func(P)
	once bool
}

// Emitter dispatches payloads of type P to listeners registered per kind K.
// The zero value is ready to use.
type Emitter[K comparable, P any] struct {
	listeners map[K][]listener[P]
	nextID    ID
}

// On registers fn for kind and returns an ID usable with Off.
func (e *Emitter[K, P]) On(kind K, fn func(P)) ID {
	return e.add(kind, fn, false)
}

// Once registers fn to run on the next emission of kind only.
func (e *Emitter[K, P]) Once(kind K, fn func(P)) ID {
	return e.add(kind, fn, true)
}

func (e *Emitter[K, P]) add(kind K, fn func(P), once bool) ID {
	if e.listeners == nil {
		e.listeners = make(map[K][]listener[P])
	}
	e.nextID++
	e.listeners[kind] = append(e.listeners[kind], listener[P]{id: e.nextID, fn: fn, once: once})
	return e.nextID
}

// Off removes the listener with the given ID. It reports whether one was found.
func (e *Emitter[K, P]) Off(id ID) bool {
	for kind, ls := range e.listeners {
		for i, l := range ls {
			if l.id != id {
				continue
			}
			e.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every listener registered for kind in registration order.
// Listeners added or removed during Emit take effect on the next emission.
func (e *Emitter[K, P]) Emit(kind K, payload P) {
	ls := e.listeners[kind]
	if len(ls) == 0 {
		return
	}
	snapshot := make([]listener[P], len(ls))
	copy(snapshot, ls)

	for _, l := range snapshot {
		if l.once {
			e.Off(l.id)
		}
		l.fn(payload)
	}
}

// Len returns the number of listeners registered for kind.
func (e *Emitter[K, P]) Len(kind K) int {
	return len(e.listeners[kind])
}

// Reset removes every listener.
func (e *Emitter[K, P]) Reset() {
	e.listeners = nil
}
