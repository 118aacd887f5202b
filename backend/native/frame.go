// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
)

// drawCall is the driver state captured by one DrawIndexed.
type drawCall struct {
	mod      *module
	uniforms []byte
	units    []gpucore.TextureID
	array    gpucore.VertexArrayID
	blend    gpucore.BlendMode
	mode     gpucore.DrawMode
	first    int
	count    int
	viewport [4]int
}

// pass is a run of draws into one target.
type pass struct {
	target gpucore.FramebufferID
	clear  *gputypes.Color
	draws  []drawCall
}

// pending holds the recorded passes of the current frame and the resources
// they read or write.
type pending struct {
	passes []*pass

	textures map[gpucore.TextureID]bool
	buffers  map[gpucore.BufferID]bool
	arrays   map[gpucore.VertexArrayID]bool
	shaders  map[gpucore.ShaderID]bool
	targets  map[gpucore.FramebufferID]bool
}

func (p *pending) reset() {
	p.passes = nil
	if p.textures == nil {
		p.textures = make(map[gpucore.TextureID]bool)
		p.buffers = make(map[gpucore.BufferID]bool)
		p.arrays = make(map[gpucore.VertexArrayID]bool)
		p.shaders = make(map[gpucore.ShaderID]bool)
		p.targets = make(map[gpucore.FramebufferID]bool)
		return
	}
	clear(p.textures)
	clear(p.buffers)
	clear(p.arrays)
	clear(p.shaders)
	clear(p.targets)
}

// current returns the open pass for target, starting a new one when the
// target changed.
func (p *pending) current(target gpucore.FramebufferID) *pass {
	if n := len(p.passes); n > 0 && p.passes[n-1].target == target {
		return p.passes[n-1]
	}
	ps := &pass{target: target}
	p.passes = append(p.passes, ps)
	return ps
}

// submission is a submitted command buffer and the objects to release once
// the GPU has finished it.
type submission struct {
	index   uint64
	cmd     hal.CommandBuffer
	release []func()
}

// screen is the default render target.
type screen struct {
	external      hal.TextureView
	tex           hal.Texture
	view          hal.TextureView
	width, height int // requested size
	texW, texH    int // size of tex
}

func (s *screen) destroy(device hal.Device) {
	if s.view != nil {
		device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		device.DestroyTexture(s.tex)
		s.tex = nil
	}
	s.texW, s.texH = 0, 0
}

func (d *Driver) markTarget(target gpucore.FramebufferID) {
	if target == gpucore.InvalidID {
		return
	}
	d.frame.targets[target] = true
	d.frame.textures[d.framebuffers[target]] = true
}

// Clear implements gpucore.Driver. A clear before any draw into the target
// becomes the load operation of its pass.
func (d *Driver) Clear(c gputypes.Color) {
	if d.destroyed {
		return
	}
	target := d.state.target
	p := d.frame.current(target)
	if len(p.draws) > 0 {
		p = &pass{target: target}
		d.frame.passes = append(d.frame.passes, p)
	}
	p.clear = &c
	d.markTarget(target)
}

// DrawIndexed implements gpucore.Driver. Draws without a bound shader or
// vertex array are ignored.
func (d *Driver) DrawIndexed(mode gpucore.DrawMode, first, count int) {
	if d.destroyed || count <= 0 || first < 0 {
		return
	}
	prog, ok := d.programs[d.state.shader]
	if !ok {
		return
	}
	arr, ok := d.arrays[d.state.array]
	if !ok {
		return
	}
	dc := drawCall{
		mod:      prog.mod,
		uniforms: slices.Clone(prog.uniforms),
		array:    d.state.array,
		blend:    d.state.blend,
		mode:     mode,
		first:    first,
		count:    count,
		viewport: d.state.viewport,
	}
	if units := min(prog.mod.units, len(d.state.units)); units > 0 {
		dc.units = slices.Clone(d.state.units[:units])
		for _, id := range dc.units {
			if id != gpucore.InvalidID {
				d.frame.textures[id] = true
			}
		}
	}
	p := d.frame.current(d.state.target)
	p.draws = append(p.draws, dc)

	d.frame.shaders[d.state.shader] = true
	d.frame.arrays[d.state.array] = true
	d.frame.buffers[arr.vertices] = true
	d.frame.buffers[arr.indices] = true
	d.markTarget(d.state.target)
}

// flushQuietly flushes for a destroy call, which cannot report errors.
func (d *Driver) flushQuietly() {
	if err := d.flush(); err != nil {
		logger.Get().Warn("native: flush before destroy", "err", err)
	}
}

// flush encodes the recorded passes into one command buffer and submits it.
func (d *Driver) flush() error {
	d.reclaim()
	passes := d.frame.passes
	d.frame.reset()
	if len(passes) == 0 {
		return nil
	}

	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "stage_frame"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("stage_frame"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	var (
		release []func()
		errs    []error
		draws   int
	)
	for _, p := range passes {
		view, format, width, height, err := d.targetView(p.target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		attachment := hal.RenderPassColorAttachment{
			View:    view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if p.clear != nil {
			attachment.LoadOp = gputypes.LoadOpClear
			attachment.ClearValue = *p.clear
		}
		rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label:            fmt.Sprintf("stage_pass_%d", p.target),
			ColorAttachments: []hal.RenderPassColorAttachment{attachment},
		})
		for i := range p.draws {
			rel, err := d.encodeDraw(rp, &p.draws[i], format, width, height)
			release = append(release, rel...)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			draws++
		}
		rp.End()
	}

	cmd, err := enc.EndEncoding()
	if err != nil {
		runAll(release)
		return errors.Join(append(errs, fmt.Errorf("native: end encoding: %w", err))...)
	}
	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		runAll(release)
		return errors.Join(append(errs, fmt.Errorf("native: submit: %w", err))...)
	}
	d.stats.Submits++
	d.stats.Draws += draws
	d.retired = append(d.retired, submission{index: index, cmd: cmd, release: release})
	logger.Get().Debug("native: submitted frame", "passes", len(passes), "draws", draws, "index", index)
	d.reclaim()
	return errors.Join(errs...)
}

// targetView returns the view a pass renders into, with its format and
// size.
func (d *Driver) targetView(target gpucore.FramebufferID) (hal.TextureView, gputypes.TextureFormat, int, int, error) {
	if target != gpucore.InvalidID {
		t, ok := d.textures[d.framebuffers[target]]
		if !ok {
			return nil, 0, 0, 0, fmt.Errorf("%w: framebuffer %d", gpucore.ErrUnknownResource, target)
		}
		return t.view, offscreenFormat, t.desc.Width, t.desc.Height, nil
	}
	s := &d.screen
	if s.external != nil {
		return s.external, d.format, s.width, s.height, nil
	}
	if s.width <= 0 || s.height <= 0 {
		return nil, 0, 0, 0, fmt.Errorf("%w: screen size %dx%d", gpucore.ErrInvalidDescriptor, s.width, s.height)
	}
	if s.tex == nil || s.texW != s.width || s.texH != s.height {
		if err := d.resizeScreen(); err != nil {
			return nil, 0, 0, 0, err
		}
	}
	return s.view, d.format, s.width, s.height, nil
}

// resizeScreen replaces the driver-owned screen texture with one of the
// requested size.
func (d *Driver) resizeScreen() error {
	s := &d.screen
	if s.tex != nil {
		old := screen{tex: s.tex, view: s.view}
		d.retire(func() { old.destroy(d.device) })
		s.tex, s.view = nil, nil
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "stage_screen",
		Size:          extent(s.width, s.height),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.format,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("native: create screen texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "stage_screen_view",
		Format:        d.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("native: create screen view: %w", err)
	}
	s.tex, s.view = tex, view
	s.texW, s.texH = s.width, s.height
	logger.Get().Debug("native: screen target resized", "width", s.width, "height", s.height)
	return nil
}

// encodeDraw records one draw into rp. The returned functions release the
// per-draw objects once the submission completes.
func (d *Driver) encodeDraw(rp hal.RenderPassEncoder, dc *drawCall, format gputypes.TextureFormat, width, height int) ([]func(), error) {
	arr, ok := d.arrays[dc.array]
	if !ok {
		return nil, fmt.Errorf("%w: vertex array %d", gpucore.ErrUnknownResource, dc.array)
	}
	vb, vok := d.buffers[arr.vertices]
	ib, iok := d.buffers[arr.indices]
	if !vok || !iok {
		return nil, fmt.Errorf("%w: buffers of vertex array %d", gpucore.ErrUnknownResource, dc.array)
	}
	pipeline, err := d.pipelines.get(pipelineKey{
		mod:    dc.mod,
		blend:  dc.blend,
		mode:   dc.mode,
		layout: arr.layoutHash,
		format: format,
	}, arr.layout)
	if err != nil {
		return nil, err
	}

	var release []func()
	ubuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "stage_uniforms",
		Size:  uint64(len(dc.uniforms)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create uniform buffer: %w", err)
	}
	release = append(release, func() { d.device.DestroyBuffer(ubuf) })
	if err := d.queue.WriteBuffer(ubuf, 0, dc.uniforms); err != nil {
		return release, fmt.Errorf("native: write uniforms: %w", err)
	}

	entries := []gputypes.BindGroupEntry{{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: ubuf.NativeHandle(),
			Size:   uint64(len(dc.uniforms)),
		},
	}}
	for i := range dc.mod.units {
		t := d.placeholder
		if i < len(dc.units) {
			if bound, ok := d.textures[dc.units[i]]; ok {
				t = bound
			}
		}
		s, err := d.sampler(t.desc)
		if err != nil {
			return release, err
		}
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  uint32(1 + 2*i), //nolint:gosec // unit count is at most 16
				Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(2 + 2*i), //nolint:gosec // unit count is at most 16
				Resource: gputypes.SamplerBinding{Sampler: s.NativeHandle()},
			},
		)
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "stage_bind_group",
		Layout:  dc.mod.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return release, fmt.Errorf("native: create bind group: %w", err)
	}
	release = append(release, func() { d.device.DestroyBindGroup(group) })

	x, y, w, h := dc.viewport[0], dc.viewport[1], dc.viewport[2], dc.viewport[3]
	if w <= 0 || h <= 0 {
		x, y, w, h = 0, 0, width, height
	}
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(0, vb.raw, 0)
	rp.SetIndexBuffer(ib.raw, gputypes.IndexFormatUint16, 0)
	rp.SetViewport(float32(x), float32(y), float32(w), float32(h), 0, 1)
	rp.DrawIndexed(uint32(dc.count), 1, uint32(dc.first), 0, 0) //nolint:gosec // validated non-negative
	return release, nil
}

// retire runs fn once every submitted command buffer has completed.
func (d *Driver) retire(fn func()) {
	if n := len(d.retired); n > 0 {
		d.retired[n-1].release = append(d.retired[n-1].release, fn)
		return
	}
	fn()
}

// reclaim releases submissions the GPU has finished.
func (d *Driver) reclaim() {
	if len(d.retired) == 0 {
		return
	}
	completed := d.queue.PollCompleted()
	n := 0
	for _, s := range d.retired {
		if s.index <= completed {
			d.release(s)
			continue
		}
		d.retired[n] = s
		n++
	}
	clear(d.retired[n:])
	d.retired = d.retired[:n]
}

func (d *Driver) release(s submission) {
	runAll(s.release)
	if s.cmd != nil {
		d.device.FreeCommandBuffer(s.cmd)
	}
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
