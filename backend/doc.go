// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the gpucore.Driver a stage renders through.
//
// Backends register a [Factory] under a name. The native and recording
// backends are registered on import:
//
//	import "github.com/gogpu/stage/backend"
//
// # Backend Selection
//
// Use [Default] to create a driver from the best backend that accepts the
// host's device provider, or [Get] to request one by name:
//
//	// Share the host application's GPU device
//	drv, err := backend.Default(app)
//
//	// Or render headless
//	drv, err := backend.Get(backend.BackendRecording, nil)
//
// # Available Backends
//
//   - native: gogpu/wgpu HAL device shared through gpucontext.DeviceProvider
//   - recording: records primitive calls without a GPU; used headless and in
//     tests
package backend
