// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the device primitive boundary of stage.
//
// The [Driver] interface is the only way the stage renderers reach a GPU. It
// mirrors a small immediate-mode API: textures are bound to numbered units,
// a shader and a vertex array are bound, the blend mode is set, and indexed
// draws are issued. Backends translate these calls to their native API:
//
//	           +--------------------+
//	           |  device / batch /  |
//	           |  vector renderers  |
//	           +---------+----------+
//	                     | gpucore.Driver
//	       +-------------+-------------+
//	       |                           |
//	+------v-------+          +--------v--------+
//	| native (HAL) |          |    recording    |
//	| gogpu/wgpu   |          | headless / test |
//	+--------------+          +-----------------+
//
// # Resource Management
//
// GPU resources are referenced via opaque IDs ([TextureID], [BufferID], etc.).
// Drivers are responsible for tracking the mapping between IDs and actual GPU
// resources. IDs are only meaningful to the driver that issued them; after a
// context loss the caller drops every ID it holds and asks again.
package gpucore
