// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"math"
	"slices"
)

// Triangulate splits a simple polygon with holes into triangles by ear
// clipping. data holds flat x,y pairs: the outer ring followed by each
// hole ring; holes holds the vertex index at which each hole starts.
// The result lists vertex indices, three per triangle.
//
// Rings may wind either way. Self-intersecting input yields a best-effort
// triangulation rather than an error.
func Triangulate(data []float64, holes []int) []int {
	n := len(data) / 2
	outerLen := n
	if len(holes) > 0 {
		outerLen = holes[0]
	}
	outer := linkedRing(data, 0, outerLen, true)
	if outer == nil || outer.next == outer.prev {
		return nil
	}
	if len(holes) > 0 {
		outer = eliminateHoles(data, holes, outer)
	}
	tris := make([]int, 0, 3*max(n-2, 1))
	earcutLinked(outer, &tris, 0)
	return tris
}

// earNode is a vertex of the circular ring being clipped.
type earNode struct {
	i          int
	x, y       float64
	prev, next *earNode
	steiner    bool
}

// linkedRing builds a ring of vertices [start, end) with the requested
// winding.
func linkedRing(data []float64, start, end int, clockwise bool) *earNode {
	var last *earNode
	if clockwise == (ringArea(data, start, end) > 0) {
		for i := start; i < end; i++ {
			last = insertNode(i, data[2*i], data[2*i+1], last)
		}
	} else {
		for i := end - 1; i >= start; i-- {
			last = insertNode(i, data[2*i], data[2*i+1], last)
		}
	}
	if last != nil && equalNodes(last, last.next) {
		removeNode(last)
		last = last.next
	}
	return last
}

func ringArea(data []float64, start, end int) float64 {
	var sum float64
	for i, j := start, end-1; i < end; i++ {
		sum += (data[2*j] - data[2*i]) * (data[2*i+1] + data[2*j+1])
		j = i
	}
	return sum
}

// filterPoints removes duplicate and collinear vertices between start and
// end.
func filterPoints(start, end *earNode) *earNode {
	if start == nil {
		return nil
	}
	if end == nil {
		end = start
	}
	p := start
	for {
		again := false
		if !p.steiner && (equalNodes(p, p.next) || area(p.prev, p, p.next) == 0) {
			removeNode(p)
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
		} else {
			p = p.next
		}
		if !again && p == end {
			break
		}
	}
	return end
}

// earcutLinked clips ears off the ring. Passes escalate when no ear is
// found: filter degenerate points, cure local self-intersections, then
// split the ring along a valid diagonal.
func earcutLinked(ear *earNode, tris *[]int, pass int) {
	if ear == nil {
		return
	}
	stop := ear
	for ear.prev != ear.next {
		prev, next := ear.prev, ear.next
		if isEar(ear) {
			*tris = append(*tris, prev.i, ear.i, next.i)
			removeNode(ear)
			ear = next.next
			stop = next.next
			continue
		}
		ear = next
		if ear == stop {
			switch pass {
			case 0:
				earcutLinked(filterPoints(ear, nil), tris, 1)
			case 1:
				ear = cureLocalIntersections(filterPoints(ear, nil), tris)
				earcutLinked(ear, tris, 2)
			case 2:
				splitEarcut(ear, tris)
			}
			return
		}
	}
}

func isEar(ear *earNode) bool {
	a, b, c := ear.prev, ear, ear.next
	if area(a, b, c) >= 0 {
		return false
	}
	x0, x1 := min(a.x, b.x, c.x), max(a.x, b.x, c.x)
	y0, y1 := min(a.y, b.y, c.y), max(a.y, b.y, c.y)
	for p := c.next; p != a; p = p.next {
		if p.x >= x0 && p.x <= x1 && p.y >= y0 && p.y <= y1 &&
			pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			area(p.prev, p, p.next) >= 0 {
			return false
		}
	}
	return true
}

func cureLocalIntersections(start *earNode, tris *[]int) *earNode {
	p := start
	for {
		a, b := p.prev, p.next.next
		if !equalNodes(a, b) && intersects(a, p, p.next, b) && locallyInside(a, b) && locallyInside(b, a) {
			*tris = append(*tris, a.i, p.i, b.i)
			removeNode(p)
			removeNode(p.next)
			p, start = b, b
		}
		p = p.next
		if p == start {
			break
		}
	}
	return filterPoints(p, nil)
}

func splitEarcut(start *earNode, tris *[]int) {
	a := start
	for {
		for b := a.next.next; b != a.prev; b = b.next {
			if a.i != b.i && isValidDiagonal(a, b) {
				c := splitPolygon(a, b)
				a = filterPoints(a, a.next)
				c = filterPoints(c, c.next)
				earcutLinked(a, tris, 0)
				earcutLinked(c, tris, 0)
				return
			}
		}
		a = a.next
		if a == start {
			return
		}
	}
}

// eliminateHoles links every hole into the outer ring through a bridge,
// leftmost hole first.
func eliminateHoles(data []float64, holes []int, outer *earNode) *earNode {
	queue := make([]*earNode, 0, len(holes))
	for i, start := range holes {
		end := len(data) / 2
		if i+1 < len(holes) {
			end = holes[i+1]
		}
		ring := linkedRing(data, start, end, false)
		if ring == nil {
			continue
		}
		if ring == ring.next {
			ring.steiner = true
		}
		queue = append(queue, leftmost(ring))
	}
	slices.SortFunc(queue, func(a, b *earNode) int {
		switch {
		case a.x < b.x:
			return -1
		case a.x > b.x:
			return 1
		}
		return 0
	})
	for _, hole := range queue {
		outer = eliminateHole(hole, outer)
	}
	return outer
}

func eliminateHole(hole, outer *earNode) *earNode {
	bridge := findHoleBridge(hole, outer)
	if bridge == nil {
		return outer
	}
	reverse := splitPolygon(bridge, hole)
	filterPoints(reverse, reverse.next)
	return filterPoints(bridge, bridge.next)
}

// findHoleBridge finds an outer vertex visible from the leftmost point of
// the hole.
func findHoleBridge(hole, outer *earNode) *earNode {
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *earNode

	p := outer
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				m = p.next
				if p.x < p.next.x {
					m = p
				}
				if x == hx {
					return m
				}
			}
		}
		p = p.next
		if p == outer {
			break
		}
	}
	if m == nil {
		return nil
	}

	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)
	p = m
	for {
		ax, cx := qx, hx
		if hy < my {
			ax, cx = hx, qx
		}
		if hx >= p.x && p.x >= mx && hx != p.x && pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if locallyInside(p, hole) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

func sectorContainsSector(m, p *earNode) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}

func leftmost(start *earNode) *earNode {
	best := start
	for p := start.next; p != start; p = p.next {
		if p.x < best.x || (p.x == best.x && p.y < best.y) {
			best = p
		}
	}
	return best
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

func isValidDiagonal(a, b *earNode) bool {
	if a.next.i == b.i || a.prev.i == b.i || intersectsPolygon(a, b) {
		return false
	}
	if locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b) &&
		(area(a.prev, a, b.prev) != 0 || area(a, b.prev, b) != 0) {
		return true
	}
	return equalNodes(a, b) && area(a.prev, a, a.next) > 0 && area(b.prev, b, b.next) > 0
}

// area is twice the signed area of triangle p, q, r.
func area(p, q, r *earNode) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func equalNodes(a, b *earNode) bool {
	return a.x == b.x && a.y == b.y
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func intersects(p1, q1, p2, q2 *earNode) bool {
	o1 := sign(area(p1, q1, p2))
	o2 := sign(area(p1, q1, q2))
	o3 := sign(area(p2, q2, p1))
	o4 := sign(area(p2, q2, q1))
	switch {
	case o1 != o2 && o3 != o4:
		return true
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, q2, q1):
		return true
	case o3 == 0 && onSegment(p2, p1, q2):
		return true
	case o4 == 0 && onSegment(p2, q1, q2):
		return true
	}
	return false
}

// onSegment reports whether q lies within the bounding box of p-r.
func onSegment(p, q, r *earNode) bool {
	return q.x <= math.Max(p.x, r.x) && q.x >= math.Min(p.x, r.x) &&
		q.y <= math.Max(p.y, r.y) && q.y >= math.Min(p.y, r.y)
}

func intersectsPolygon(a, b *earNode) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i && intersects(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			return false
		}
	}
}

func locallyInside(a, b *earNode) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}
	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

// middleInside reports whether the midpoint of a-b lies inside the ring.
func middleInside(a, b *earNode) bool {
	inside := false
	px, py := (a.x+b.x)/2, (a.y+b.y)/2
	p := a
	for {
		if (p.y > py) != (p.next.y > py) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			return inside
		}
	}
}

// splitPolygon links a and b with a bridge, splitting the ring in two. It
// returns the copy of b that starts the second ring.
func splitPolygon(a, b *earNode) *earNode {
	a2 := &earNode{i: a.i, x: a.x, y: a.y}
	b2 := &earNode{i: b.i, x: b.x, y: b.y}
	an, bp := a.next, b.prev

	a.next, b.prev = b, a
	a2.next, an.prev = an, a2
	b2.next, a2.prev = a2, b2
	bp.next, b2.prev = b2, bp
	return b2
}

func insertNode(i int, x, y float64, last *earNode) *earNode {
	p := &earNode{i: i, x: x, y: y}
	if last == nil {
		p.prev, p.next = p, p
		return p
	}
	p.next, p.prev = last.next, last
	last.next.prev = p
	last.next = p
	return p
}

func removeNode(p *earNode) {
	p.next.prev = p.prev
	p.prev.next = p.next
}
