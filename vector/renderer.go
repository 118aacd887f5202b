// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"errors"
	"fmt"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
)

// item is one queued Graphics with its draw state.
type item struct {
	g         *Graphics
	transform [12]float32
	tint      [4]float32
	blend     gpucore.BlendMode
}

// Renderer draws Graphics through a device.
type Renderer struct {
	dev    *device.Device
	shader *device.Shader
	tess   *Tessellator

	queue []item

	draws   int
	uploads int
}

// NewRenderer creates a vector renderer drawing through d with its own
// geometry pool.
func NewRenderer(d *device.Device) *Renderer {
	return &Renderer{
		dev:    d,
		shader: d.Shader(gpucore.ShaderPrimitive),
		tess:   NewTessellator(NewPool()),
	}
}

// Tessellator returns the renderer's tessellator.
func (r *Renderer) Tessellator() *Tessellator { return r.tess }

// Pending returns the number of queued Graphics.
func (r *Renderer) Pending() int { return len(r.queue) }

// Draws returns the number of draws issued by the last flush.
func (r *Renderer) Draws() int { return r.draws }

// Uploads returns the number of geometry uploads so far.
func (r *Renderer) Uploads() int { return r.uploads }

// Start implements device.ObjectRenderer.
func (r *Renderer) Start() {}

// Stop implements device.ObjectRenderer.
func (r *Renderer) Stop() error { return r.Flush() }

// Render queues g drawn with the world transform, a 0xRRGGBB tint, alpha
// and blend mode. An empty Graphics returns ErrEmptyGraphics; a destroyed
// one panics.
func (r *Renderer) Render(g *Graphics, transform geom.Matrix, tintRGB uint32, alpha float64, blend gpucore.BlendMode) error {
	if g.Destroyed() {
		panic("vector: render of destroyed graphics")
	}
	if g.Len() == 0 {
		return fmt.Errorf("vector: render: %w", ErrEmptyGraphics)
	}
	r.queue = append(r.queue, item{
		g:         g,
		transform: transform.Uniform(),
		tint:      tint(tintRGB, alpha),
		blend:     blend,
	})
	return nil
}

// Flush implements device.ObjectRenderer. Each queued Graphics is brought
// up to date and drawn with one draw per geometry, in queue order.
func (r *Renderer) Flush() error {
	if len(r.queue) == 0 {
		return nil
	}
	defer func() {
		clear(r.queue)
		r.queue = r.queue[:0]
	}()
	r.draws = 0

	d := r.dev
	if err := d.BindShader(r.shader); err != nil {
		return fmt.Errorf("vector: flush: %w", err)
	}
	var errs []error
	for i := range r.queue {
		it := &r.queue[i]
		geoms, err := r.tess.Update(it.g)
		if err != nil {
			errs = append(errs, fmt.Errorf("vector: flush: %w", err))
			continue
		}
		r.shader.SetUniform(gpucore.UniformTransform, it.transform[:])
		r.shader.SetUniform(gpucore.UniformTint, it.tint[:])
		d.SetBlendMode(it.blend)
		for _, geo := range geoms {
			if err := r.draw(geo); err != nil {
				logger.Get().Warn("vector: skipping geometry", "geometry", geo, "err", err)
				errs = append(errs, err)
			}
		}
	}
	logger.Get().Debug("vector: flush", "graphics", len(r.queue), "draws", r.draws)
	return errors.Join(errs...)
}

// draw uploads geo when its contents or the epoch changed, then draws it.
func (r *Renderer) draw(geo *Geometry) error {
	if geo.count == 0 {
		return nil
	}
	d := r.dev
	if d.Lost() {
		d.DrawIndexed(geo.Mode, 0, geo.IndexCount())
		return nil
	}
	if geo.vao == nil {
		geo.vao = d.NewVertexArray(Layout)
	}
	if !geo.vao.Current() || geo.uploaded != geo.version {
		if err := geo.vao.Upload(geo.vertices, geo.indices); err != nil {
			return fmt.Errorf("vector: upload: %w", err)
		}
		geo.uploaded = geo.version
		r.uploads++
	}
	if err := d.BindVertexArray(geo.vao); err != nil {
		return fmt.Errorf("vector: draw: %w", err)
	}
	d.DrawIndexed(geo.Mode, 0, geo.IndexCount())
	r.draws++
	return nil
}

// Destroy drops queued work and frees the GPU buffers of pooled geometry.
// Graphics still holding geometry keep it until they are destroyed.
func (r *Renderer) Destroy() {
	clear(r.queue)
	r.queue = r.queue[:0]
	r.tess.pool.Destroy()
}

// compile-time interface check
var _ device.ObjectRenderer = (*Renderer)(nil)
