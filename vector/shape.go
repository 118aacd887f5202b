// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"fmt"
	"math"

	"github.com/gogpu/stage/geom"
)

// ShapeKind tags the geometry of a Shape.
type ShapeKind uint8

// Shape kinds.
const (
	ShapeRect ShapeKind = iota
	ShapeRoundedRect
	ShapeCircle
	ShapeEllipse
	ShapePolygon
)

// String returns the shape kind name.
func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "Rect"
	case ShapeRoundedRect:
		return "RoundedRect"
	case ShapeCircle:
		return "Circle"
	case ShapeEllipse:
		return "Ellipse"
	case ShapePolygon:
		return "Polygon"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Fill is the fill style of a shape.
type Fill struct {
	Color uint32 // 0xRRGGBB
	Alpha float64
}

// Line is the line style of a shape. A zero Width draws no line.
type Line struct {
	Width float64
	Color uint32 // 0xRRGGBB
	Alpha float64
}

// Shape is one primitive of a Graphics with the styles it was drawn with.
//
// Geometry depends on Kind:
//   - ShapeRect, ShapeRoundedRect: X, Y, W, H (and Radius).
//   - ShapeCircle: center X, Y and Radius.
//   - ShapeEllipse: center X, Y and half axes W, H.
//   - ShapePolygon: Points as flat x,y pairs.
type Shape struct {
	Kind ShapeKind

	X, Y, W, H float64
	Radius     float64
	Points     []float64
	Closed     bool

	// Holes are subtracted from the fill and outlined with the line style.
	Holes []*Shape

	Filled bool
	Fill   Fill
	Line   Line

	// NativeLines draws the outline with one pixel wide GPU lines.
	NativeLines bool
}

// outline returns the perimeter of the shape as flat x,y pairs. Closed
// shapes do not repeat their first point.
func (s *Shape) outline() []float64 {
	switch s.Kind {
	case ShapeRect:
		x0, y0, x1, y1 := s.X, s.Y, s.X+s.W, s.Y+s.H
		return []float64{x0, y0, x1, y0, x1, y1, x0, y1}
	case ShapeRoundedRect:
		return roundedRectPoints(s.X, s.Y, s.W, s.H, s.Radius)
	case ShapeCircle:
		return ellipsePoints(s.X, s.Y, s.Radius, s.Radius)
	case ShapeEllipse:
		return ellipsePoints(s.X, s.Y, s.W, s.H)
	default:
		pts := s.Points
		if n := len(pts); s.Closed && n >= 4 && pts[0] == pts[n-2] && pts[1] == pts[n-1] {
			pts = pts[:n-2]
		}
		return pts
	}
}

// closed reports whether the outline wraps around to its first point.
func (s *Shape) closed() bool {
	return s.Kind != ShapePolygon || s.Closed
}

// bounds returns the shape bounds including half the line width.
func (s *Shape) bounds() geom.Rect {
	var r geom.Rect
	switch s.Kind {
	case ShapeRect, ShapeRoundedRect:
		r = geom.Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
	case ShapeCircle:
		r = geom.Rect{X: s.X - s.Radius, Y: s.Y - s.Radius, W: 2 * s.Radius, H: 2 * s.Radius}
	case ShapeEllipse:
		r = geom.Rect{X: s.X - s.W, Y: s.Y - s.H, W: 2 * s.W, H: 2 * s.H}
	default:
		r = geom.Bounds(s.Points)
	}
	if s.Line.Width > 0 {
		pad := s.Line.Width / 2
		r = geom.Rect{X: r.X - pad, Y: r.Y - pad, W: r.W + s.Line.Width, H: r.H + s.Line.Width}
	}
	return r
}

// segmentsFor returns the number of perimeter points used for an ellipse
// with half axes rx and ry.
func segmentsFor(rx, ry float64) int {
	n := int(math.Floor(15 * math.Sqrt(math.Abs(rx)+math.Abs(ry))))
	return min(max(n, 8), 2048)
}

func ellipsePoints(cx, cy, rx, ry float64) []float64 {
	n := segmentsFor(rx, ry)
	pts := make([]float64, 0, 2*n)
	step := 2 * math.Pi / float64(n)
	for i := range n {
		a := float64(i) * step
		pts = append(pts, cx+math.Cos(a)*rx, cy+math.Sin(a)*ry)
	}
	return pts
}

// roundedRectPoints walks the rectangle clockwise from the top edge with a
// quarter circle at each corner. The radius is clamped to half the
// shorter side.
func roundedRectPoints(x, y, w, h, radius float64) []float64 {
	r := min(radius, math.Min(w, h)/2)
	if r <= 0 {
		return []float64{x, y, x + w, y, x + w, y + h, x, y + h}
	}
	n := max(segmentsFor(r, r)/4, 2)
	pts := make([]float64, 0, 8*(n+1))
	corner := func(cx, cy, start float64) {
		for i := range n + 1 {
			a := start + float64(i)*(math.Pi/2)/float64(n)
			pts = append(pts, cx+math.Cos(a)*r, cy+math.Sin(a)*r)
		}
	}
	corner(x+w-r, y+r, -math.Pi/2)
	corner(x+w-r, y+h-r, 0)
	corner(x+r, y+h-r, math.Pi/2)
	corner(x+r, y+r, math.Pi)
	return pts
}
