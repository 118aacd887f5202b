// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/gpucore"
)

// miterLimit caps the miter length at joins, as a multiple of half the
// line width.
const miterLimit = 4.0

// mesh is scratch geometry for one shape, with indices relative to its
// first vertex.
type mesh struct {
	points  []float64
	colors  []uint32
	indices []int
}

func (m *mesh) reset() {
	m.points = m.points[:0]
	m.colors = m.colors[:0]
	m.indices = m.indices[:0]
}

func (m *mesh) count() int { return len(m.colors) }

func (m *mesh) vertex(x, y float64, color uint32) int {
	m.points = append(m.points, x, y)
	m.colors = append(m.colors, color)
	return len(m.colors) - 1
}

// buildFill tessellates the interior of s as a triangle list.
func buildFill(m *mesh, s *Shape) {
	color := gpucore.PackColor(s.Fill.Color, s.Fill.Alpha)
	if len(s.Holes) > 0 {
		buildPolygon(m, s, color)
		return
	}
	switch s.Kind {
	case ShapeRect:
		if s.W == 0 || s.H == 0 {
			return
		}
		x0, y0, x1, y1 := s.X, s.Y, s.X+s.W, s.Y+s.H
		a := m.vertex(x0, y0, color)
		m.vertex(x1, y0, color)
		m.vertex(x1, y1, color)
		m.vertex(x0, y1, color)
		m.indices = append(m.indices, a, a+1, a+2, a, a+2, a+3)
	case ShapeCircle, ShapeEllipse:
		rx, ry := s.Radius, s.Radius
		if s.Kind == ShapeEllipse {
			rx, ry = s.W, s.H
		}
		if rx == 0 || ry == 0 {
			return
		}
		pts := ellipsePoints(s.X, s.Y, rx, ry)
		center := m.vertex(s.X, s.Y, color)
		n := len(pts) / 2
		for i := range n {
			m.vertex(pts[2*i], pts[2*i+1], color)
		}
		for i := range n {
			m.indices = append(m.indices, center, center+1+i, center+1+(i+1)%n)
		}
	default:
		buildPolygon(m, s, color)
	}
}

// buildPolygon triangulates the outline of s minus its holes.
func buildPolygon(m *mesh, s *Shape, color uint32) {
	data := s.outline()
	if len(data) < 6 {
		return
	}
	var holes []int
	if len(s.Holes) > 0 {
		data = append([]float64(nil), data...)
		for _, h := range s.Holes {
			pts := h.outline()
			if len(pts) < 6 {
				continue
			}
			holes = append(holes, len(data)/2)
			data = append(data, pts...)
		}
	}
	tris := Triangulate(data, holes)
	if len(tris) == 0 {
		return
	}
	base := m.count()
	for i := 0; i+1 < len(data); i += 2 {
		m.vertex(data[i], data[i+1], color)
	}
	for _, t := range tris {
		m.indices = append(m.indices, base+t)
	}
}

// buildLines strokes the outline of s and of its holes with mitered quads.
func buildLines(m *mesh, s *Shape) {
	color := gpucore.PackColor(s.Line.Color, s.Line.Alpha)
	buildLine(m, s.outline(), s.closed(), s.Line.Width, color)
	for _, h := range s.Holes {
		buildLine(m, h.outline(), h.closed(), s.Line.Width, color)
	}
}

// buildNativeLines emits the outline of s and of its holes as a line list.
func buildNativeLines(m *mesh, s *Shape) {
	color := gpucore.PackColor(s.Line.Color, s.Line.Alpha)
	buildNativeLine(m, s.outline(), s.closed(), color)
	for _, h := range s.Holes {
		buildNativeLine(m, h.outline(), h.closed(), color)
	}
}

// dedupe drops consecutive repeated points. For closed outlines a last
// point equal to the first is dropped too.
func dedupe(pts []float64, closed bool) []geom.Point {
	out := make([]geom.Point, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		p := geom.Pt(pts[i], pts[i+1])
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	if n := len(out); closed && n > 1 && out[0] == out[n-1] {
		out = out[:n-1]
	}
	return out
}

// buildLine expands a polyline into a strip of quads, one per segment,
// sharing a mitered vertex pair at every join.
func buildLine(m *mesh, pts []float64, closed bool, width float64, color uint32) {
	p := dedupe(pts, closed)
	n := len(p)
	if n < 2 {
		return
	}
	if n == 2 {
		closed = false
	}
	hw := width / 2
	base := m.count()
	for i := range n {
		var prev, next *geom.Point
		switch {
		case i > 0:
			prev = &p[i-1]
		case closed:
			prev = &p[n-1]
		}
		switch {
		case i < n-1:
			next = &p[i+1]
		case closed:
			next = &p[0]
		}
		off := miterOffset(prev, p[i], next, hw)
		m.vertex(p[i].X+off.X, p[i].Y+off.Y, color)
		m.vertex(p[i].X-off.X, p[i].Y-off.Y, color)
	}
	segs := n - 1
	if closed {
		segs = n
	}
	for i := range segs {
		j := (i + 1) % n
		a, b := base+2*i, base+2*i+1
		c, d := base+2*j, base+2*j+1
		m.indices = append(m.indices, a, b, c, b, d, c)
	}
}

// miterOffset returns the offset from p to the left edge of a line of half
// width hw, mitered between the segments from prev and to next.
func miterOffset(prev *geom.Point, p geom.Point, next *geom.Point, hw float64) geom.Point {
	var n0, n1 geom.Point
	if prev != nil {
		n0 = normal(*prev, p)
	}
	if next != nil {
		n1 = normal(p, *next)
	}
	switch {
	case prev == nil:
		return n1.Mul(hw)
	case next == nil:
		return n0.Mul(hw)
	}
	sum := n0.Add(n1)
	l := sum.Length()
	if l < 1e-9 {
		// the line folds back on itself
		return n0.Mul(hw)
	}
	miter := sum.Mul(1 / l)
	cos := miter.X*n1.X + miter.Y*n1.Y
	length := min(hw/cos, miterLimit*hw)
	return miter.Mul(length)
}

// normal returns the unit left normal of the segment a-b.
func normal(a, b geom.Point) geom.Point {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return geom.Point{}
	}
	return geom.Pt(-d.Y/l, d.X/l)
}

// buildNativeLine emits one line segment per polyline edge.
func buildNativeLine(m *mesh, pts []float64, closed bool, color uint32) {
	p := dedupe(pts, closed)
	n := len(p)
	if n < 2 {
		return
	}
	base := m.count()
	for _, q := range p {
		m.vertex(q.X, q.Y, color)
	}
	for i := range n - 1 {
		m.indices = append(m.indices, base+i, base+i+1)
	}
	if closed && n > 2 {
		m.indices = append(m.indices, base+n-1, base)
	}
}

// tint returns a 0xRRGGBB tint and alpha as premultiplied RGBA floats.
func tint(rgb uint32, alpha float64) [4]float32 {
	alpha = min(max(alpha, 0), 1)
	return [4]float32{
		float32(float64(rgb>>16&0xFF) / 255 * alpha),
		float32(float64(rgb>>8&0xFF) / 255 * alpha),
		float32(float64(rgb&0xFF) / 255 * alpha),
		float32(alpha),
	}
}
