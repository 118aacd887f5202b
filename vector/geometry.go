// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/gpucore"
)

// Vertex layout: position (vec2<f32>) + premultiplied color (unorm8x4)
// = 12 bytes.
const VertexSize = 12

// MaxVertices is the vertex limit of one Geometry, set by uint16 indices.
const MaxVertices = math.MaxUint16

// Layout is the primitive vertex layout.
var Layout = gpucore.VertexLayout{
	Stride: VertexSize,
	Attributes: []gpucore.VertexAttribute{
		{Location: 0, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
		{Location: 1, Format: gputypes.VertexFormatUnorm8x4, Offset: 8},
	},
}

// Geometry is a tessellated vertex and index buffer drawn with one
// indexed draw.
type Geometry struct {
	// Mode is the topology the indices describe.
	Mode gpucore.DrawMode

	vertices []byte
	indices  []byte
	count    int

	// version advances on every change; uploaded is the version the GPU
	// buffers hold.
	version  uint64
	uploaded uint64
	vao      *device.VertexArray
	pooled   bool
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return g.count }

// IndexCount returns the number of indices.
func (g *Geometry) IndexCount() int { return len(g.indices) / 2 }

// Vertices returns the packed vertex data. Callers must not modify it.
func (g *Geometry) Vertices() []byte { return g.vertices }

// Indices returns the little-endian uint16 index data. Callers must not
// modify it.
func (g *Geometry) Indices() []byte { return g.indices }

// Version returns the change counter of the geometry contents.
func (g *Geometry) Version() uint64 { return g.version }

func (g *Geometry) String() string {
	return fmt.Sprintf("Geometry[%v, %d vertices, %d indices]", g.Mode, g.count, g.IndexCount())
}

// append packs m after the existing vertices, offsetting its indices.
func (g *Geometry) append(m *mesh) {
	base := g.count
	for i, c := range m.colors {
		g.vertices = binary.LittleEndian.AppendUint32(g.vertices, math.Float32bits(float32(m.points[2*i])))
		g.vertices = binary.LittleEndian.AppendUint32(g.vertices, math.Float32bits(float32(m.points[2*i+1])))
		g.vertices = binary.LittleEndian.AppendUint32(g.vertices, c)
	}
	for _, idx := range m.indices {
		g.indices = binary.LittleEndian.AppendUint16(g.indices, uint16(base+idx))
	}
	g.count += len(m.colors)
	g.version++
}

func (g *Geometry) reset() {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	g.count = 0
	g.version++
}

// Pool tiers, as log2 of the vertex capacity.
const (
	minTier = 6
	maxTier = 16
)

// Pool recycles Geometry buffers, indexed by power-of-two vertex capacity.
// A recycled geometry keeps its GPU buffers, which grow on demand.
type Pool struct {
	tiers   [maxTier + 1][]*Geometry
	created int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

func tierOf(vertices int) int {
	return min(max(bits.Len(uint(max(vertices, 1)-1)), minTier), maxTier)
}

// Get returns an empty geometry with room for at least the given number
// of vertices, reusing a pooled one when available.
func (p *Pool) Get(vertices int, mode gpucore.DrawMode) *Geometry {
	for k := tierOf(vertices); k <= maxTier; k++ {
		list := p.tiers[k]
		if n := len(list); n > 0 {
			g := list[n-1]
			list[n-1] = nil
			p.tiers[k] = list[:n-1]
			g.pooled = false
			g.Mode = mode
			return g
		}
	}
	p.created++
	c := 1 << tierOf(vertices)
	return &Geometry{
		Mode:     mode,
		vertices: make([]byte, 0, c*VertexSize),
		indices:  make([]byte, 0, 3*c*2),
	}
}

// Put empties g and returns it to the pool.
func (p *Pool) Put(g *Geometry) {
	if g.pooled {
		return
	}
	g.reset()
	g.pooled = true
	k := min(max(bits.Len(uint(cap(g.vertices)/VertexSize))-1, minTier), maxTier)
	p.tiers[k] = append(p.tiers[k], g)
}

// Len returns the number of pooled geometries.
func (p *Pool) Len() int {
	n := 0
	for _, list := range p.tiers {
		n += len(list)
	}
	return n
}

// Created returns the number of geometries the pool allocated.
func (p *Pool) Created() int { return p.created }

// Destroy frees the GPU buffers of pooled geometries and empties the pool.
func (p *Pool) Destroy() {
	for k, list := range p.tiers {
		for _, g := range list {
			if g.vao != nil {
				g.vao.Destroy()
			}
		}
		p.tiers[k] = nil
	}
}
