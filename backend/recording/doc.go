// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recording provides a gpucore.Driver that records every call.
//
// The recording driver keeps the same binding state a GPU driver does and
// shadows buffer contents on the CPU, but never touches a GPU. It is the
// headless backend of stage and the device double used throughout its tests:
// every draw is captured as a [DrawCommand] carrying the texture units, blend
// mode and vertex array it executed under, so batching decisions can be
// asserted exactly.
//
// # Example
//
//	drv := recording.New(recording.WithMaxTextureUnits(4))
//	st, _ := stage.New(drv)
//	_ = st.RenderFrame(ctx, nodes)
//	for _, d := range drv.Draws() {
//	    fmt.Println(d.Blend, d.Count, d.Units)
//	}
package recording
