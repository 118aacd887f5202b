// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
	"github.com/gogpu/stage/texture"
)

// Batch size limits, in quads.
const (
	// DefaultSize is the default number of quads per flush.
	DefaultSize = 4096

	// MaxSize keeps every vertex index addressable by uint16.
	MaxSize = 1 << 14
)

// Config holds batcher settings.
type Config struct {
	// Size is the number of quads buffered before an automatic flush. It is
	// rounded up to a power of two and clamped to MaxSize.
	Size int
}

// Group is one draw call: a contiguous run of quads sharing a blend mode and
// a texture unit assignment.
type Group struct {
	// Start and Size select the quads [Start, Start+Size) of the flush.
	Start, Size int

	// Blend is the blend mode of every quad in the group.
	Blend gpucore.BlendMode

	// Textures lists the textures the group claimed, Units their unit.
	Textures []*texture.Base
	Units    []int
}

// tier is a pooled vertex buffer for flushes of up to quads quads.
type tier struct {
	quads int
	data  []byte
	vao   *device.VertexArray
}

// Batcher is the sprite renderer. It collects quads in submission order and
// draws them on Flush with as few draw calls as the texture unit limit and
// blend changes allow.
type Batcher struct {
	dev    *device.Device
	size   int
	shader *device.Shader

	quads   []Quad
	tiers   []*tier
	indices []byte
	table   *allocTable
	groups  []Group

	flushes int
	dropped int
}

// New creates a batcher drawing through d.
func New(d *device.Device, cfg Config) *Batcher {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	size = min(1<<bits.Len(uint(size-1)), MaxSize)
	return &Batcher{
		dev:     d,
		size:    size,
		shader:  d.Shader(gpucore.ShaderSprite),
		quads:   make([]Quad, 0, size),
		tiers:   make([]*tier, bits.Len(uint(size))),
		indices: quadIndices(size),
		table:   newAllocTable(d.MaxTextures()),
	}
}

// Size returns the number of quads per flush.
func (b *Batcher) Size() int { return b.size }

// Pending returns the number of queued quads.
func (b *Batcher) Pending() int { return len(b.quads) }

// Dropped returns the number of quads skipped because their texture was
// not ready.
func (b *Batcher) Dropped() int { return b.dropped }

// Flushes returns the number of non-empty flushes.
func (b *Batcher) Flushes() int { return b.flushes }

// Groups returns the draw groups of the last flush. The slice is valid until
// the next flush.
func (b *Batcher) Groups() []Group { return b.groups }

// Start implements device.ObjectRenderer.
func (b *Batcher) Start() {}

// Stop implements device.ObjectRenderer.
func (b *Batcher) Stop() error { return b.Flush() }

// Render queues q. Quads whose texture is not ready are dropped for this
// frame; a destroyed texture panics. A full batch is flushed first.
func (b *Batcher) Render(q *Quad) error {
	tex := q.Texture
	if tex == nil {
		return nil
	}
	switch tex.State() {
	case texture.StateReady:
	case texture.StateDestroyed:
		panic(fmt.Sprintf("batch: render of destroyed texture %q", tex.Key()))
	default:
		b.dropped++
		return nil
	}
	if len(b.quads) == b.size {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	b.quads = append(b.quads, *q)
	return nil
}

// Flush implements device.ObjectRenderer. It partitions the queued quads
// into draw groups and issues one draw per group, in submission order.
func (b *Batcher) Flush() error {
	n := len(b.quads)
	if n == 0 {
		return nil
	}
	defer func() {
		clear(b.quads)
		b.quads = b.quads[:0]
	}()
	b.flushes++

	t := b.tier(n)
	b.group(t.data)

	d := b.dev
	indices := []byte(nil)
	if !t.vao.Current() {
		indices = b.indices[:t.quads*12]
	}
	if err := t.vao.Upload(t.data, indices); err != nil {
		return fmt.Errorf("batch: flush: %w", err)
	}
	if err := d.BindShader(b.shader); err != nil {
		return fmt.Errorf("batch: flush: %w", err)
	}
	if err := d.BindVertexArray(t.vao); err != nil {
		return fmt.Errorf("batch: flush: %w", err)
	}

	var errs []error
	for i := range b.groups {
		g := &b.groups[i]
		if err := b.bindGroup(g); err != nil {
			logger.Get().Warn("batch: skipping draw group", "start", g.Start, "size", g.Size, "err", err)
			errs = append(errs, err)
			continue
		}
		d.SetBlendMode(g.Blend)
		d.DrawIndexed(gpucore.DrawTriangles, g.Start*6, g.Size*6)
	}
	logger.Get().Debug("batch: flush", "quads", n, "groups", len(b.groups), "tier", t.quads)
	return errors.Join(errs...)
}

// tier returns the pooled buffer for the next power of two >= n quads.
func (b *Batcher) tier(n int) *tier {
	k := bits.Len(uint(n - 1))
	t := b.tiers[k]
	if t == nil {
		quads := 1 << k
		t = &tier{
			quads: quads,
			data:  make([]byte, quads*quadBytes),
			vao:   b.dev.NewVertexArray(Layout),
		}
		b.tiers[k] = t
	}
	return t
}

// group walks the queued quads, splits them into draw groups and writes
// their vertices into data.
func (b *Batcher) group(data []byte) {
	d := b.dev
	t := b.table
	t.seed(d)
	limit := len(t.slots)

	b.groups = b.groups[:0]
	blend := b.quads[0].Blend
	b.groups = append(b.groups, Group{Start: 0, Blend: blend})
	var current *texture.Base
	claimed := 0

	for i := range b.quads {
		q := &b.quads[i]
		if q.Blend != blend {
			// Blend is device state: a change always closes the group.
			blend = q.Blend
			current = nil
			claimed = limit
			t.next()
		}
		if q.Texture != current {
			current = q.Texture
			if !t.isClaimed(current) {
				if claimed == limit {
					t.next()
					b.groups[len(b.groups)-1].Size = i - b.groups[len(b.groups)-1].Start
					b.groups = append(b.groups, Group{Start: i, Blend: blend})
					claimed = 0
				}
				current.Touch(d.Tick())
				unit := t.claim(current)
				g := &b.groups[len(b.groups)-1]
				g.Textures = append(g.Textures, current)
				g.Units = append(g.Units, unit)
				claimed++
			}
		}
		writeQuad(data[i*quadBytes:], q, t.unit(current))
	}
	last := &b.groups[len(b.groups)-1]
	last.Size = len(b.quads) - last.Start
}

// bindGroup binds the textures of g to their units, skipping those already
// resident there from an earlier group or flush.
func (b *Batcher) bindGroup(g *Group) error {
	d := b.dev
	for j, tex := range g.Textures {
		unit := g.Units[j]
		if d.Unit(unit) == tex && d.Resident(tex) {
			continue
		}
		if _, err := d.BindTexture(tex, unit, true); err != nil {
			return err
		}
	}
	return nil
}

// Destroy frees the pooled vertex buffers.
func (b *Batcher) Destroy() {
	for _, t := range b.tiers {
		if t != nil {
			t.vao.Destroy()
		}
	}
	clear(b.tiers)
	b.quads = b.quads[:0]
}

// compile-time interface check
var _ device.ObjectRenderer = (*Batcher)(nil)
