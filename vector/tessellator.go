// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
)

// cache is the tessellated state of one Graphics.
type cache struct {
	pool  *Pool
	geoms []*Geometry

	// next is the index of the first shape not yet tessellated.
	next int

	valid      bool
	dirty      uint64
	clearDirty uint64
}

// reset returns every geometry to the pool.
func (c *cache) reset() {
	for i, g := range c.geoms {
		c.pool.Put(g)
		c.geoms[i] = nil
	}
	c.geoms = c.geoms[:0]
	c.next = 0
	c.valid = false
}

func (c *cache) release() {
	c.reset()
	c.geoms = nil
}

// Tessellator converts Graphics into Geometry, caching the result on the
// Graphics until it changes.
type Tessellator struct {
	pool *Pool
	mesh mesh

	shapes int
}

// NewTessellator returns a tessellator drawing geometry from pool.
func NewTessellator(pool *Pool) *Tessellator {
	return &Tessellator{pool: pool}
}

// Pool returns the geometry pool.
func (t *Tessellator) Pool() *Pool { return t.pool }

// Shapes returns the number of shapes tessellated so far.
func (t *Tessellator) Shapes() int { return t.shapes }

// Update returns the geometry of g, tessellating only what changed since
// the last call. While g is unchanged the same slice of the same Geometry
// objects is returned.
//
// A Graphics without shapes returns ErrEmptyGraphics. Updating a destroyed
// Graphics panics.
func (t *Tessellator) Update(g *Graphics) ([]*Geometry, error) {
	if g.destroyed {
		panic("vector: tessellation of destroyed graphics")
	}
	c := g.cache
	if c == nil || c.pool != t.pool {
		if c != nil {
			c.release()
		}
		c = &cache{pool: t.pool, clearDirty: g.clearDirty}
		g.cache = c
	}
	if c.clearDirty != g.clearDirty {
		c.reset()
		c.clearDirty = g.clearDirty
	}
	if len(g.shapes) == 0 {
		return nil, ErrEmptyGraphics
	}
	if c.valid && c.dirty == g.dirty {
		return c.geoms, nil
	}

	from := c.next
	for ; c.next < len(g.shapes); c.next++ {
		t.build(c, g.shapes[c.next])
	}
	c.dirty = g.dirty
	c.valid = true
	logger.Get().Debug("vector: tessellated", "shapes", c.next-from, "geometries", len(c.geoms))
	return c.geoms, nil
}

// build appends the fill and the line of s to the geometry list.
func (t *Tessellator) build(c *cache, s *Shape) {
	m := &t.mesh
	t.shapes++
	if s.Filled && s.Fill.Alpha > 0 {
		m.reset()
		buildFill(m, s)
		t.emit(c, s, gpucore.DrawTriangles)
	}
	if s.Line.Width > 0 && s.Line.Alpha > 0 {
		m.reset()
		mode := gpucore.DrawTriangles
		if s.NativeLines {
			mode = gpucore.DrawLines
			buildNativeLines(m, s)
		} else {
			buildLines(m, s)
		}
		t.emit(c, s, mode)
	}
}

// emit appends the scratch mesh to the last geometry when the topology
// matches and the vertices fit, or to a fresh one from the pool.
func (t *Tessellator) emit(c *cache, s *Shape, mode gpucore.DrawMode) {
	m := &t.mesh
	n := m.count()
	if n == 0 {
		return
	}
	if n > MaxVertices {
		logger.Get().Warn("vector: shape exceeds the vertex limit, skipped",
			"kind", s.Kind, "vertices", n, "limit", MaxVertices)
		return
	}
	var geo *Geometry
	if k := len(c.geoms); k > 0 {
		geo = c.geoms[k-1]
	}
	if geo == nil || geo.Mode != mode || geo.count+n > MaxVertices {
		geo = c.pool.Get(n, mode)
		c.geoms = append(c.geoms, geo)
	}
	geo.append(m)
}
