// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements gpucore.Driver on a gogpu/wgpu HAL device.
//
// The driver either shares the device of a host application through
// [New], which accepts any gpucontext.DeviceProvider exposing its HAL
// device, or opens a standalone device with [Open]:
//
//	drv, err := native.Open(gputypes.BackendVulkan)
//	if err != nil {
//		return err
//	}
//	defer drv.Destroy()
//
// # Deferred Encoding
//
// WebGPU has no immediate-mode binding state, so the driver keeps it: binds
// and uniform writes only update driver state, and each DrawIndexed
// snapshots the state into the render pass of the bound target. The passes
// are encoded into one command buffer and submitted at EndFrame. A write or
// destroy that touches a resource a recorded draw reads submits the
// recorded work first, so draws always see the data that was current when
// they were issued.
//
// Render pipelines are created per program, blend mode, topology, vertex
// layout and target format on first use and cached until the program is
// destroyed. Objects created for a submission are released once the queue
// reports it complete.
//
// # Shaders
//
// The built-in programs are written in WGSL and compiled to SPIR-V with
// gogpu/naga. Sprite programs are generated for the unit count requested,
// one texture and sampler binding per unit.
package native
