// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vector draws retained vector shapes.
//
// A Graphics records an ordered list of shapes (rectangles, rounded
// rectangles, circles, ellipses and polygons, the latter built from paths)
// together with their fill and line styles. Every mutation bumps the
// dirty counter; Clear additionally bumps the clear counter.
//
// The Tessellator turns a Graphics into Geometry: interleaved
// position+color vertices with uint16 indices, ready for upload. It is
// incremental: shapes appended since the last Update are tessellated into
// the existing geometry, and only a Clear (or an edit to an already
// tessellated shape) rebuilds from scratch. Geometry buffers come from a
// Pool indexed by power-of-two size tier.
//
// The Renderer is the device.ObjectRenderer for vector content. It queues
// Graphics with their world transform, tint and blend mode, and on Flush
// uploads the geometry whose contents changed and issues one draw per
// geometry.
//
// Fills use triangle lists. Lines are either expanded into mitered quads
// or, with native lines enabled, drawn as one pixel wide line lists in a
// geometry of their own.
package vector
