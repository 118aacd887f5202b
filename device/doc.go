// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device owns the rendering context and every piece of device-wide
// binding state.
//
// A Device wraps a gpucore.Driver and adds what an immediate-mode API does
// not provide by itself:
//
//   - a fixed-length texture unit table with one empty placeholder per unit,
//   - lazy upload of texture.Base pixels, keyed by a context epoch,
//   - redundant-bind elimination for shaders, vertex arrays, render targets
//     and blend modes,
//   - the ObjectRenderer state machine (flush before switch),
//   - context loss and restore,
//   - the texture garbage collector.
//
// # Context Loss
//
// LoseContext makes the device inert: every driver-facing call becomes a
// no-op and draws are counted as dropped. RestoreContext increments the
// epoch and orphans every GPU handle created before it. Handles are never
// destroyed across epochs because the driver that issued them is gone;
// objects are recreated the next time they are requested.
//
// # Threading
//
// A Device is not safe for concurrent use. All calls happen on the
// goroutine driving the frame loop.
package device
