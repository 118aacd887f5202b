// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/gpucore"
)

// offscreenFormat is the color format of every driver texture.
const offscreenFormat = gputypes.TextureFormatRGBA8Unorm

type texture struct {
	desc gpucore.TextureDesc
	raw  hal.Texture
	view hal.TextureView
}

type buffer struct {
	kind gpucore.BufferKind
	size int
	raw  hal.Buffer
}

type vertexArray struct {
	layout     gpucore.VertexLayout
	layoutHash uint64
	vertices   gpucore.BufferID
	indices    gpucore.BufferID
}

type samplerKey struct {
	scale gpucore.ScaleMode
	wrap  gpucore.WrapMode
}

// bindState is the immediate-mode state applied to every draw.
type bindState struct {
	units    []gpucore.TextureID
	shader   gpucore.ShaderID
	array    gpucore.VertexArrayID
	target   gpucore.FramebufferID
	blend    gpucore.BlendMode
	viewport [4]int
}

func (d *Driver) allocID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Driver) newTexture(desc gpucore.TextureDesc) (*texture, error) {
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	}
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          extent(desc.Width, desc.Height),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        offscreenFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, err
	}
	view, err := d.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        offscreenFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(raw)
		return nil, err
	}
	return &texture{desc: desc, raw: raw, view: view}, nil
}

func (d *Driver) writeTexture(t *texture, pixels []byte) error {
	w, h := uint32(t.desc.Width), uint32(t.desc.Height) //nolint:gosec // validated positive at creation
	size := extent(t.desc.Width, t.desc.Height)
	return d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.raw, Aspect: gputypes.TextureAspectAll},
		pixels,
		&hal.ImageDataLayout{BytesPerRow: w * 4, RowsPerImage: h},
		&size,
	)
}

func (d *Driver) destroyTexture(t *texture) {
	if t == nil {
		return
	}
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.raw)
}

func extent(width, height int) hal.Extent3D {
	return hal.Extent3D{
		Width:              uint32(width),  //nolint:gosec // validated positive
		Height:             uint32(height), //nolint:gosec // validated positive
		DepthOrArrayLayers: 1,
	}
}

// sampler returns the shared sampler for a texture's scale and wrap modes.
func (d *Driver) sampler(desc gpucore.TextureDesc) (hal.Sampler, error) {
	key := samplerKey{scale: desc.Scale, wrap: desc.Wrap}
	if s, ok := d.samplers[key]; ok {
		return s, nil
	}
	filter := desc.Scale.FilterMode()
	address := desc.Wrap.AddressMode()
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        fmt.Sprintf("sampler_%d_%d", desc.Scale, desc.Wrap),
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}
	d.samplers[key] = s
	return s, nil
}

// CreateTexture implements gpucore.Driver.
func (d *Driver) CreateTexture(desc gpucore.TextureDesc) (gpucore.TextureID, error) {
	if d.destroyed {
		return gpucore.InvalidID, ErrDestroyed
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %dx%d", gpucore.ErrInvalidDescriptor, desc.Width, desc.Height)
	}
	if desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %dx%d exceeds %d",
			gpucore.ErrInvalidDescriptor, desc.Width, desc.Height, d.caps.MaxTextureSize)
	}
	t, err := d.newTexture(desc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	id := gpucore.TextureID(d.allocID())
	d.textures[id] = t
	return id, nil
}

// WriteTexture implements gpucore.Driver. Pending draws that sample the
// texture are submitted first so they see the old contents.
func (d *Driver) WriteTexture(id gpucore.TextureID, pixels []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, id)
	}
	if len(pixels) != t.desc.Size() {
		return fmt.Errorf("%w: got %d bytes, want %d", gpucore.ErrSizeMismatch, len(pixels), t.desc.Size())
	}
	var err error
	if d.frame.textures[id] {
		err = d.flush()
	}
	if werr := d.writeTexture(t, pixels); werr != nil {
		return fmt.Errorf("native: write texture %d: %w", id, werr)
	}
	return err
}

// DestroyTexture implements gpucore.Driver.
func (d *Driver) DestroyTexture(id gpucore.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	if d.frame.textures[id] {
		d.flushQuietly()
	}
	delete(d.textures, id)
	for i, u := range d.state.units {
		if u == id {
			d.state.units[i] = gpucore.InvalidID
		}
	}
	d.retire(func() { d.destroyTexture(t) })
}

// BindTexture implements gpucore.Driver.
func (d *Driver) BindTexture(unit int, id gpucore.TextureID) {
	if unit < 0 || unit >= len(d.state.units) {
		return
	}
	if id != gpucore.InvalidID {
		if _, ok := d.textures[id]; !ok {
			return
		}
	}
	d.state.units[unit] = id
}

// CreateBuffer implements gpucore.Driver. Sizes are rounded up to four
// bytes.
func (d *Driver) CreateBuffer(kind gpucore.BufferKind, size int) (gpucore.BufferID, error) {
	if d.destroyed {
		return gpucore.InvalidID, ErrDestroyed
	}
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer size %d", gpucore.ErrInvalidDescriptor, size)
	}
	usage := gputypes.BufferUsageCopyDst
	switch kind {
	case gpucore.BufferVertex:
		usage |= gputypes.BufferUsageVertex
	case gpucore.BufferIndex:
		usage |= gputypes.BufferUsageIndex
	default:
		return gpucore.InvalidID, fmt.Errorf("%w: buffer kind %v", gpucore.ErrInvalidDescriptor, kind)
	}
	size = align4(size)
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: kind.String(),
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create %v buffer: %w", kind, err)
	}
	id := gpucore.BufferID(d.allocID())
	d.buffers[id] = &buffer{kind: kind, size: size, raw: raw}
	return id, nil
}

func align4(n int) int { return (n + 3) &^ 3 }

// WriteBuffer implements gpucore.Driver. The offset must be a multiple of
// four; the data is zero-padded to one.
func (d *Driver) WriteBuffer(id gpucore.BufferID, offset int, data []byte) error {
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", gpucore.ErrUnknownResource, id)
	}
	if offset%4 != 0 {
		return fmt.Errorf("%w: offset %d", ErrUnaligned, offset)
	}
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("%w: write [%d,%d) into %d bytes", gpucore.ErrSizeMismatch, offset, offset+len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	var err error
	if d.frame.buffers[id] {
		err = d.flush()
	}
	if n := len(data); n%4 != 0 {
		padded := make([]byte, align4(n))
		copy(padded, data)
		data = padded
	}
	if werr := d.queue.WriteBuffer(b.raw, uint64(offset), data); werr != nil {
		return fmt.Errorf("native: write buffer %d: %w", id, werr)
	}
	return err
}

// DestroyBuffer implements gpucore.Driver.
func (d *Driver) DestroyBuffer(id gpucore.BufferID) {
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	if d.frame.buffers[id] {
		d.flushQuietly()
	}
	delete(d.buffers, id)
	d.retire(func() { d.device.DestroyBuffer(b.raw) })
}

// CreateVertexArray implements gpucore.Driver.
func (d *Driver) CreateVertexArray(layout gpucore.VertexLayout, vertices, indices gpucore.BufferID) (gpucore.VertexArrayID, error) {
	if vb, ok := d.buffers[vertices]; !ok || vb.kind != gpucore.BufferVertex {
		return gpucore.InvalidID, fmt.Errorf("%w: vertex buffer %d", gpucore.ErrUnknownResource, vertices)
	}
	if ib, ok := d.buffers[indices]; !ok || ib.kind != gpucore.BufferIndex {
		return gpucore.InvalidID, fmt.Errorf("%w: index buffer %d", gpucore.ErrUnknownResource, indices)
	}
	if layout.Stride == 0 || len(layout.Attributes) == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: empty vertex layout", gpucore.ErrInvalidDescriptor)
	}
	id := gpucore.VertexArrayID(d.allocID())
	d.arrays[id] = &vertexArray{
		layout:     layout,
		layoutHash: hashLayout(layout),
		vertices:   vertices,
		indices:    indices,
	}
	return id, nil
}

// BindVertexArray implements gpucore.Driver.
func (d *Driver) BindVertexArray(id gpucore.VertexArrayID) {
	d.state.array = id
}

// DestroyVertexArray implements gpucore.Driver.
func (d *Driver) DestroyVertexArray(id gpucore.VertexArrayID) {
	if _, ok := d.arrays[id]; !ok {
		return
	}
	if d.frame.arrays[id] {
		d.flushQuietly()
	}
	delete(d.arrays, id)
	if d.state.array == id {
		d.state.array = gpucore.InvalidID
	}
}

// CreateShader implements gpucore.Driver. Programs of the same kind and
// unit count share one compiled module.
func (d *Driver) CreateShader(desc gpucore.ShaderDesc) (gpucore.ShaderID, error) {
	if d.destroyed {
		return gpucore.InvalidID, ErrDestroyed
	}
	if desc.Kind == gpucore.ShaderSprite && desc.MaxTextures > d.caps.MaxTextureUnits {
		return gpucore.InvalidID, fmt.Errorf("%w: %d textures exceed %d units",
			gpucore.ErrInvalidDescriptor, desc.MaxTextures, d.caps.MaxTextureUnits)
	}
	key := moduleKey{kind: desc.Kind}
	if desc.Kind == gpucore.ShaderSprite {
		key.units = desc.MaxTextures
	}
	m, ok := d.modules[key]
	if !ok {
		var err error
		if m, err = d.createModule(desc); err != nil {
			return gpucore.InvalidID, err
		}
		d.modules[key] = m
	}
	m.refs++
	id := gpucore.ShaderID(d.allocID())
	d.programs[id] = &program{mod: m, uniforms: make([]byte, uniformSize(desc.Kind))}
	return id, nil
}

// BindShader implements gpucore.Driver.
func (d *Driver) BindShader(id gpucore.ShaderID) {
	if _, ok := d.programs[id]; ok {
		d.state.shader = id
	}
}

// SetUniform implements gpucore.Driver. Draws already recorded keep the
// values they were recorded with.
func (d *Driver) SetUniform(id gpucore.ShaderID, name string, data []float32) {
	if p, ok := d.programs[id]; ok {
		p.setUniform(name, data)
	}
}

// DestroyShader implements gpucore.Driver. The module is released with its
// last program.
func (d *Driver) DestroyShader(id gpucore.ShaderID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if d.frame.shaders[id] {
		d.flushQuietly()
	}
	delete(d.programs, id)
	if d.state.shader == id {
		d.state.shader = gpucore.InvalidID
	}
	m := p.mod
	if m.refs--; m.refs > 0 {
		return
	}
	for key, mm := range d.modules {
		if mm == m {
			delete(d.modules, key)
		}
	}
	d.retire(func() { d.destroyModule(m) })
}

// CreateFramebuffer implements gpucore.Driver.
func (d *Driver) CreateFramebuffer(color gpucore.TextureID) (gpucore.FramebufferID, error) {
	t, ok := d.textures[color]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, color)
	}
	if !t.desc.RenderTarget {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %d", ErrNotRenderTarget, color)
	}
	id := gpucore.FramebufferID(d.allocID())
	d.framebuffers[id] = color
	return id, nil
}

// BindFramebuffer implements gpucore.Driver.
func (d *Driver) BindFramebuffer(id gpucore.FramebufferID) {
	if id != gpucore.InvalidID {
		if _, ok := d.framebuffers[id]; !ok {
			return
		}
	}
	d.state.target = id
}

// DestroyFramebuffer implements gpucore.Driver.
func (d *Driver) DestroyFramebuffer(id gpucore.FramebufferID) {
	if _, ok := d.framebuffers[id]; !ok {
		return
	}
	if d.frame.targets[id] {
		d.flushQuietly()
	}
	delete(d.framebuffers, id)
	if d.state.target == id {
		d.state.target = gpucore.InvalidID
	}
}

// Viewport implements gpucore.Driver. While the screen is bound the
// viewport also sizes the driver-owned screen texture.
func (d *Driver) Viewport(x, y, width, height int) {
	d.state.viewport = [4]int{x, y, width, height}
	if d.state.target == gpucore.InvalidID && d.screen.external == nil {
		d.screen.width, d.screen.height = x+width, y+height
	}
}

// SetBlendMode implements gpucore.Driver.
func (d *Driver) SetBlendMode(mode gpucore.BlendMode) {
	d.state.blend = mode
}
