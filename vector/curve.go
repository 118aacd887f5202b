// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"math"

	"github.com/gogpu/stage/geom"
)

// flattenTolerance is the maximum distance, in logical pixels, between a
// curve and its polyline.
const flattenTolerance = 0.25

// maxSubdivisions bounds the recursion for degenerate input such as NaN.
const maxSubdivisions = 16

// flattenQuad appends the polyline of a quadratic Bézier curve to dst,
// excluding its start point p0.
func flattenQuad(p0, p1, p2 geom.Point, dst []float64) []float64 {
	return flattenQuadRec(p0, p1, p2, 0, dst)
}

func flattenQuadRec(p0, p1, p2 geom.Point, depth int, dst []float64) []float64 {
	if depth >= maxSubdivisions || distanceToLine(p1, p0, p2) < flattenTolerance {
		return append(dst, p2.X, p2.Y)
	}
	q0 := lerp(p0, p1, 0.5)
	q1 := lerp(p1, p2, 0.5)
	q2 := lerp(q0, q1, 0.5)
	dst = flattenQuadRec(p0, q0, q2, depth+1, dst)
	return flattenQuadRec(q2, q1, p2, depth+1, dst)
}

// flattenCubic appends the polyline of a cubic Bézier curve to dst,
// excluding its start point p0.
func flattenCubic(p0, p1, p2, p3 geom.Point, dst []float64) []float64 {
	return flattenCubicRec(p0, p1, p2, p3, 0, dst)
}

func flattenCubicRec(p0, p1, p2, p3 geom.Point, depth int, dst []float64) []float64 {
	dist := math.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if depth >= maxSubdivisions || dist < flattenTolerance {
		return append(dst, p3.X, p3.Y)
	}
	// de Casteljau split at t=0.5
	q0 := lerp(p0, p1, 0.5)
	q1 := lerp(p1, p2, 0.5)
	q2 := lerp(p2, p3, 0.5)
	r0 := lerp(q0, q1, 0.5)
	r1 := lerp(q1, q2, 0.5)
	s := lerp(r0, r1, 0.5)
	dst = flattenCubicRec(p0, q0, r0, s, depth+1, dst)
	return flattenCubicRec(s, r1, q2, p3, depth+1, dst)
}

func lerp(p, q geom.Point, t float64) geom.Point {
	return geom.Pt(p.X+(q.X-p.X)*t, p.Y+(q.Y-p.Y)*t)
}

// distanceToLine returns the distance from p to the segment a-b.
func distanceToLine(p, a, b geom.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 < 1e-20 {
		return p.Sub(a).Length()
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y) / l2
	switch {
	case t < 0:
		return p.Sub(a).Length()
	case t > 1:
		return p.Sub(b).Length()
	}
	return p.Sub(a.Add(ab.Mul(t))).Length()
}
