// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/texture"
)

// Vertex layout: position (vec2<f32>) + uv (unorm16x2) + tint (unorm8x4)
// + texture unit (f32) = 20 bytes.
const (
	VertexSize = 20
	quadBytes  = 4 * VertexSize
)

// Layout is the sprite vertex layout.
var Layout = gpucore.VertexLayout{
	Stride: VertexSize,
	Attributes: []gpucore.VertexAttribute{
		{Location: 0, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
		{Location: 1, Format: gputypes.VertexFormatUnorm16x2, Offset: 8},
		{Location: 2, Format: gputypes.VertexFormatUnorm8x4, Offset: 12},
		{Location: 3, Format: gputypes.VertexFormatFloat32, Offset: 16},
	},
}

// Quad is one textured quad waiting for a flush. Corners run clockwise
// from the top left.
type Quad struct {
	Texture *texture.Base
	Pos     [4]geom.Point
	UV      [8]float32
	// Tint is premultiplied ABGR, see gpucore.PackColor.
	Tint  uint32
	Blend gpucore.BlendMode
}

// SetRegion places region r with its anchor at the origin of the world
// transform m.
func (q *Quad) SetRegion(r *texture.Region, m geom.Matrix, anchor geom.Point) {
	w, h := r.Width(), r.Height()
	x0, y0 := -anchor.X*w, -anchor.Y*h
	x1, y1 := x0+w, y0+h
	q.Texture = r.Base()
	q.Pos = [4]geom.Point{
		m.TransformPoint(geom.Pt(x0, y0)),
		m.TransformPoint(geom.Pt(x1, y0)),
		m.TransformPoint(geom.Pt(x1, y1)),
		m.TransformPoint(geom.Pt(x0, y1)),
	}
	q.UV = r.UVs()
}

// writeQuad writes the four vertices of q into buf.
func writeQuad(buf []byte, q *Quad, unit int) {
	id := math.Float32bits(float32(unit))
	for i := range 4 {
		v := buf[i*VertexSize:]
		binary.LittleEndian.PutUint32(v[0:4], math.Float32bits(float32(q.Pos[i].X)))
		binary.LittleEndian.PutUint32(v[4:8], math.Float32bits(float32(q.Pos[i].Y)))
		binary.LittleEndian.PutUint16(v[8:10], unorm16(q.UV[i*2]))
		binary.LittleEndian.PutUint16(v[10:12], unorm16(q.UV[i*2+1]))
		binary.LittleEndian.PutUint32(v[12:16], q.Tint)
		binary.LittleEndian.PutUint32(v[16:20], id)
	}
}

func unorm16(f float32) uint16 {
	return uint16(min(max(f, 0), 1)*65535 + 0.5)
}

// quadIndices returns the index data for n quads: two triangles per quad,
// top-left, top-right, bottom-right and top-left, bottom-right, bottom-left.
func quadIndices(n int) []byte {
	buf := make([]byte, n*6*2)
	for q := range n {
		base := uint16(q * 4) //nolint:gosec // batch size keeps indices within uint16
		for i, off := range [6]uint16{0, 1, 2, 0, 2, 3} {
			binary.LittleEndian.PutUint16(buf[(q*6+i)*2:], base+off)
		}
	}
	return buf
}
