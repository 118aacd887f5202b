// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"errors"
	"math"

	"github.com/gogpu/stage/geom"
)

var (
	// ErrEmptyGraphics is returned when a Graphics without shapes is
	// tessellated or rendered.
	ErrEmptyGraphics = errors.New("vector: graphics has no shapes")

	// ErrNoHoleTarget is returned by AddHole when there is no shape for
	// the hole to cut.
	ErrNoHoleTarget = errors.New("vector: hole needs a preceding shape")
)

// arcSegments is the number of segments per full turn of an arc.
const arcSegments = 40

// Graphics is an ordered list of vector shapes drawn with the fill and
// line style current at the time each shape was added.
//
// The zero value is an empty Graphics with no fill and no line. A Graphics
// is not safe for concurrent use.
type Graphics struct {
	shapes []*Shape

	// path is the open polygon extended by LineTo and the curve methods.
	// It is always the last shape.
	path *Shape

	line        Line
	fill        Fill
	filling     bool
	nativeLines bool

	dirty      uint64
	clearDirty uint64
	destroyed  bool

	boundsDirty uint64
	bounds      geom.Rect

	cache *cache
}

// NewGraphics returns an empty Graphics.
func NewGraphics() *Graphics {
	return &Graphics{}
}

// Dirty returns the mutation counter. It advances on every change.
func (g *Graphics) Dirty() uint64 { return g.dirty }

// ClearDirty returns the counter that advances when previously
// tessellated geometry became invalid, such as on Clear.
func (g *Graphics) ClearDirty() uint64 { return g.clearDirty }

// Len returns the number of shapes.
func (g *Graphics) Len() int { return len(g.shapes) }

// Shapes returns the shape list. Callers must not modify it.
func (g *Graphics) Shapes() []*Shape { return g.shapes }

// Destroyed reports whether Destroy was called.
func (g *Graphics) Destroyed() bool { return g.destroyed }

// Filling reports whether shapes added now are filled.
func (g *Graphics) Filling() bool { return g.filling }

// NativeLines reports whether lines of new shapes use one pixel GPU lines.
func (g *Graphics) NativeLines() bool { return g.nativeLines }

// SetNativeLines selects native lines for shapes added from now on.
func (g *Graphics) SetNativeLines(native bool) {
	g.mutable()
	g.nativeLines = native
}

// LineStyle sets the line style of following shapes. A path in progress
// continues as a new shape from its last point.
func (g *Graphics) LineStyle(width float64, color uint32, alpha float64) {
	g.mutable()
	g.line = Line{Width: width, Color: color, Alpha: alpha}
	if p := g.path; p != nil {
		if n := len(p.Points); n > 2 {
			g.startPath(p.Points[n-2], p.Points[n-1])
			return
		}
		g.edit(len(g.shapes) - 1)
		p.Line = g.line
		p.NativeLines = g.nativeLines
		g.touch()
	}
}

// BeginFill fills following shapes with color and alpha until EndFill.
func (g *Graphics) BeginFill(color uint32, alpha float64) {
	g.mutable()
	g.filling = true
	g.fill = Fill{Color: color, Alpha: alpha}
	if p := g.path; p != nil && len(p.Points) <= 2 {
		g.edit(len(g.shapes) - 1)
		p.Filled = true
		p.Fill = g.fill
		g.touch()
	}
}

// EndFill stops filling following shapes.
func (g *Graphics) EndFill() {
	g.mutable()
	g.filling = false
	g.fill = Fill{}
}

// MoveTo starts a new path at x, y.
func (g *Graphics) MoveTo(x, y float64) {
	g.mutable()
	g.startPath(x, y)
}

// LineTo adds a straight segment to the current path. Without a path it
// starts one at the origin.
func (g *Graphics) LineTo(x, y float64) {
	g.mutable()
	g.extend(x, y)
}

// QuadraticCurveTo adds a quadratic Bézier segment to the current path.
func (g *Graphics) QuadraticCurveTo(cpx, cpy, x, y float64) {
	g.mutable()
	x0, y0 := g.pen()
	g.extend(flattenQuad(geom.Pt(x0, y0), geom.Pt(cpx, cpy), geom.Pt(x, y), nil)...)
}

// BezierCurveTo adds a cubic Bézier segment to the current path.
func (g *Graphics) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	g.mutable()
	x0, y0 := g.pen()
	g.extend(flattenCubic(geom.Pt(x0, y0), geom.Pt(cp1x, cp1y), geom.Pt(cp2x, cp2y), geom.Pt(x, y), nil)...)
}

// Arc adds a circular arc around cx, cy from angle start to end, in
// radians. The current path is joined to the arc start with a line; without
// a path the arc starts one.
func (g *Graphics) Arc(cx, cy, radius, start, end float64, anticlockwise bool) {
	g.mutable()
	if start == end || radius <= 0 {
		return
	}
	switch {
	case !anticlockwise && end <= start:
		end += 2 * math.Pi
	case anticlockwise && start <= end:
		start += 2 * math.Pi
	}
	sweep := end - start
	segs := int(math.Ceil(math.Abs(sweep)/(2*math.Pi))) * arcSegments

	sx, sy := cx+math.Cos(start)*radius, cy+math.Sin(start)*radius
	if p := g.path; p != nil {
		if n := len(p.Points); p.Points[n-2] != sx || p.Points[n-1] != sy {
			g.extend(sx, sy)
		}
	} else {
		g.startPath(sx, sy)
	}

	pts := make([]float64, 0, 2*segs)
	for i := 1; i <= segs; i++ {
		a := start + sweep*float64(i)/float64(segs)
		pts = append(pts, cx+math.Cos(a)*radius, cy+math.Sin(a)*radius)
	}
	g.extend(pts...)
}

// ClosePath closes the current path back to its first point.
func (g *Graphics) ClosePath() {
	g.mutable()
	if p := g.path; p != nil && !p.Closed {
		g.edit(len(g.shapes) - 1)
		p.Closed = true
		g.touch()
	}
}

// DrawRect adds a rectangle.
func (g *Graphics) DrawRect(x, y, w, h float64) {
	g.addShape(&Shape{Kind: ShapeRect, X: x, Y: y, W: w, H: h})
}

// DrawRoundedRect adds a rectangle with corners of the given radius.
func (g *Graphics) DrawRoundedRect(x, y, w, h, radius float64) {
	g.addShape(&Shape{Kind: ShapeRoundedRect, X: x, Y: y, W: w, H: h, Radius: radius})
}

// DrawCircle adds a circle centered on x, y.
func (g *Graphics) DrawCircle(x, y, radius float64) {
	g.addShape(&Shape{Kind: ShapeCircle, X: x, Y: y, Radius: radius})
}

// DrawEllipse adds an ellipse centered on x, y with half axes hw and hh.
func (g *Graphics) DrawEllipse(x, y, hw, hh float64) {
	g.addShape(&Shape{Kind: ShapeEllipse, X: x, Y: y, W: hw, H: hh})
}

// DrawPolygon adds a closed polygon through flat x,y pairs. The polygon
// becomes the current path.
func (g *Graphics) DrawPolygon(points []float64) {
	pts := make([]float64, len(points)&^1)
	copy(pts, points)
	g.addShape(&Shape{Kind: ShapePolygon, Points: pts, Closed: true})
}

// AddHole turns the last shape into a hole of the shape before it.
func (g *Graphics) AddHole() error {
	g.mutable()
	g.dropDegeneratePath()
	n := len(g.shapes)
	if n < 2 {
		return ErrNoHoleTarget
	}
	g.edit(n - 2)
	hole := g.shapes[n-1]
	g.shapes[n-1] = nil
	g.shapes = g.shapes[:n-1]
	g.shapes[n-2].Holes = append(g.shapes[n-2].Holes, hole)
	g.path = nil
	g.touch()
	return nil
}

// Clear removes every shape and resets the line and fill styles.
func (g *Graphics) Clear() {
	g.mutable()
	clear(g.shapes)
	g.shapes = g.shapes[:0]
	g.path = nil
	g.line = Line{}
	g.fill = Fill{}
	g.filling = false
	g.clearDirty++
	g.touch()
}

// Destroy releases cached geometry to its pool. The Graphics must not be
// used afterwards.
func (g *Graphics) Destroy() {
	if g.destroyed {
		return
	}
	if g.cache != nil {
		g.cache.release()
		g.cache = nil
	}
	g.shapes = nil
	g.path = nil
	g.destroyed = true
}

// Bounds returns the local bounds of every shape including line width.
func (g *Graphics) Bounds() geom.Rect {
	if g.boundsDirty != g.dirty {
		var r geom.Rect
		for _, s := range g.shapes {
			r = r.Union(s.bounds())
		}
		g.bounds = r
		g.boundsDirty = g.dirty
	}
	return g.bounds
}

func (g *Graphics) mutable() {
	if g.destroyed {
		panic("vector: use of destroyed graphics")
	}
}

func (g *Graphics) touch() { g.dirty++ }

// edit invalidates the tessellation when shape i was already tessellated.
func (g *Graphics) edit(i int) {
	if g.cache != nil && i < g.cache.next {
		g.clearDirty++
	}
}

// pen returns the last point of the current path, starting one at the
// origin if needed.
func (g *Graphics) pen() (float64, float64) {
	if g.path == nil {
		g.startPath(0, 0)
	}
	pts := g.path.Points
	return pts[len(pts)-2], pts[len(pts)-1]
}

func (g *Graphics) extend(pts ...float64) {
	if g.path == nil {
		g.startPath(0, 0)
	}
	g.edit(len(g.shapes) - 1)
	g.path.Points = append(g.path.Points, pts...)
	g.touch()
}

func (g *Graphics) startPath(x, y float64) {
	g.addShape(&Shape{Kind: ShapePolygon, Points: []float64{x, y}})
}

// addShape appends s with the current styles. A polygon becomes the
// current path.
func (g *Graphics) addShape(s *Shape) {
	g.mutable()
	g.dropDegeneratePath()
	g.path = nil

	s.Filled = g.filling
	s.Fill = g.fill
	s.Line = g.line
	s.NativeLines = g.nativeLines
	if s.Kind == ShapePolygon {
		s.Closed = s.Closed || g.filling
		g.path = s
	}
	g.shapes = append(g.shapes, s)
	g.touch()
}

// dropDegeneratePath removes a path that never got past its first point.
func (g *Graphics) dropDegeneratePath() {
	p := g.path
	if p == nil || len(p.Points) > 2 {
		return
	}
	n := len(g.shapes) - 1
	g.edit(n)
	g.shapes[n] = nil
	g.shapes = g.shapes[:n]
	g.path = nil
	g.touch()
}
