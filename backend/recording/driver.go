// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/gpucore"
)

// Name is the registry name of the recording backend.
const Name = "recording"

// Default limits.
const (
	DefaultMaxTextureUnits = 8
	DefaultMaxTextureSize  = 4096
)

// Option configures a Driver.
type Option func(*Driver)

// WithMaxTextureUnits sets the number of texture units reported by Caps.
func WithMaxTextureUnits(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.caps.MaxTextureUnits = n
		}
	}
}

// WithMaxTextureSize sets the largest texture dimension accepted.
func WithMaxTextureSize(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.caps.MaxTextureSize = n
		}
	}
}

// Texture is the recorded state of a texture.
type Texture struct {
	Desc    gpucore.TextureDesc
	Uploads int
	Pixels  []byte
}

// VertexArray is the recorded state of a vertex array.
type VertexArray struct {
	Layout   gpucore.VertexLayout
	Vertices gpucore.BufferID
	Indices  gpucore.BufferID
}

type buffer struct {
	kind gpucore.BufferKind
	data []byte
}

// Driver is a gpucore.Driver that records calls instead of executing them.
type Driver struct {
	caps   gpucore.Caps
	nextID uint64

	textures     map[gpucore.TextureID]*Texture
	buffers      map[gpucore.BufferID]*buffer
	arrays       map[gpucore.VertexArrayID]*VertexArray
	shaders      map[gpucore.ShaderID]map[string][]float32
	framebuffers map[gpucore.FramebufferID]gpucore.TextureID

	units       []gpucore.TextureID
	shader      gpucore.ShaderID
	array       gpucore.VertexArrayID
	framebuffer gpucore.FramebufferID
	blend       gpucore.BlendMode

	commands []Command
	frames   int
	failures map[CommandType]error
}

// New creates a recording driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		caps: gpucore.Caps{
			MaxTextureUnits: DefaultMaxTextureUnits,
			MaxTextureSize:  DefaultMaxTextureSize,
		},
		textures:     make(map[gpucore.TextureID]*Texture),
		buffers:      make(map[gpucore.BufferID]*buffer),
		arrays:       make(map[gpucore.VertexArrayID]*VertexArray),
		shaders:      make(map[gpucore.ShaderID]map[string][]float32),
		framebuffers: make(map[gpucore.FramebufferID]gpucore.TextureID),
		failures:     make(map[CommandType]error),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.units = make([]gpucore.TextureID, d.caps.MaxTextureUnits)
	return d
}

// FailNext makes the next call of the given type return err.
// Only calls with an error result honor it.
func (d *Driver) FailNext(cmd CommandType, err error) {
	d.failures[cmd] = err
}

func (d *Driver) takeFailure(cmd CommandType) error {
	err, ok := d.failures[cmd]
	if !ok {
		return nil
	}
	delete(d.failures, cmd)
	return err
}

func (d *Driver) record(c Command) {
	d.commands = append(d.commands, c)
}

func (d *Driver) allocID() uint64 {
	d.nextID++
	return d.nextID
}

// Name implements gpucore.Driver.
func (d *Driver) Name() string { return Name }

// Caps implements gpucore.Driver.
func (d *Driver) Caps() gpucore.Caps { return d.caps }

// CreateTexture implements gpucore.Driver.
func (d *Driver) CreateTexture(desc gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := d.takeFailure(CmdCreateTexture); err != nil {
		return gpucore.InvalidID, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %dx%d", gpucore.ErrInvalidDescriptor, desc.Width, desc.Height)
	}
	if desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %dx%d exceeds %d",
			gpucore.ErrInvalidDescriptor, desc.Width, desc.Height, d.caps.MaxTextureSize)
	}
	id := gpucore.TextureID(d.allocID())
	d.textures[id] = &Texture{Desc: desc}
	d.record(CreateTextureCommand{ID: id, Desc: desc})
	return id, nil
}

// WriteTexture implements gpucore.Driver.
func (d *Driver) WriteTexture(id gpucore.TextureID, pixels []byte) error {
	if err := d.takeFailure(CmdWriteTexture); err != nil {
		return err
	}
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, id)
	}
	if len(pixels) != t.Desc.Size() {
		return fmt.Errorf("%w: got %d bytes, want %d", gpucore.ErrSizeMismatch, len(pixels), t.Desc.Size())
	}
	t.Pixels = append(t.Pixels[:0], pixels...)
	t.Uploads++
	d.record(WriteTextureCommand{ID: id, Bytes: len(pixels)})
	return nil
}

// DestroyTexture implements gpucore.Driver.
func (d *Driver) DestroyTexture(id gpucore.TextureID) {
	if _, ok := d.textures[id]; !ok {
		return
	}
	delete(d.textures, id)
	for i, u := range d.units {
		if u == id {
			d.units[i] = gpucore.InvalidID
		}
	}
	d.record(DestroyTextureCommand{ID: id})
}

// BindTexture implements gpucore.Driver.
func (d *Driver) BindTexture(unit int, id gpucore.TextureID) {
	if unit < 0 || unit >= len(d.units) {
		return
	}
	if id != gpucore.InvalidID {
		if _, ok := d.textures[id]; !ok {
			return
		}
	}
	d.units[unit] = id
	d.record(BindTextureCommand{Unit: unit, ID: id})
}

// CreateBuffer implements gpucore.Driver.
func (d *Driver) CreateBuffer(kind gpucore.BufferKind, size int) (gpucore.BufferID, error) {
	if err := d.takeFailure(CmdCreateBuffer); err != nil {
		return gpucore.InvalidID, err
	}
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer size %d", gpucore.ErrInvalidDescriptor, size)
	}
	id := gpucore.BufferID(d.allocID())
	d.buffers[id] = &buffer{kind: kind, data: make([]byte, size)}
	d.record(ResourceCommand{Cmd: CmdCreateBuffer, ID: uint64(id)})
	return id, nil
}

// WriteBuffer implements gpucore.Driver.
func (d *Driver) WriteBuffer(id gpucore.BufferID, offset int, data []byte) error {
	if err := d.takeFailure(CmdWriteBuffer); err != nil {
		return err
	}
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", gpucore.ErrUnknownResource, id)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("%w: write [%d,%d) into %d bytes", gpucore.ErrSizeMismatch, offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	d.record(WriteBufferCommand{ID: id, Offset: offset, Bytes: len(data)})
	return nil
}

// DestroyBuffer implements gpucore.Driver.
func (d *Driver) DestroyBuffer(id gpucore.BufferID) {
	if _, ok := d.buffers[id]; !ok {
		return
	}
	delete(d.buffers, id)
	d.record(ResourceCommand{Cmd: CmdDestroyBuffer, ID: uint64(id)})
}

// CreateVertexArray implements gpucore.Driver.
func (d *Driver) CreateVertexArray(layout gpucore.VertexLayout, vertices, indices gpucore.BufferID) (gpucore.VertexArrayID, error) {
	if err := d.takeFailure(CmdCreateVertexArray); err != nil {
		return gpucore.InvalidID, err
	}
	if vb, ok := d.buffers[vertices]; !ok || vb.kind != gpucore.BufferVertex {
		return gpucore.InvalidID, fmt.Errorf("%w: vertex buffer %d", gpucore.ErrUnknownResource, vertices)
	}
	if ib, ok := d.buffers[indices]; !ok || ib.kind != gpucore.BufferIndex {
		return gpucore.InvalidID, fmt.Errorf("%w: index buffer %d", gpucore.ErrUnknownResource, indices)
	}
	id := gpucore.VertexArrayID(d.allocID())
	d.arrays[id] = &VertexArray{Layout: layout, Vertices: vertices, Indices: indices}
	d.record(ResourceCommand{Cmd: CmdCreateVertexArray, ID: uint64(id)})
	return id, nil
}

// BindVertexArray implements gpucore.Driver.
func (d *Driver) BindVertexArray(id gpucore.VertexArrayID) {
	d.array = id
	d.record(ResourceCommand{Cmd: CmdBindVertexArray, ID: uint64(id)})
}

// DestroyVertexArray implements gpucore.Driver.
func (d *Driver) DestroyVertexArray(id gpucore.VertexArrayID) {
	if _, ok := d.arrays[id]; !ok {
		return
	}
	delete(d.arrays, id)
	if d.array == id {
		d.array = gpucore.InvalidID
	}
	d.record(ResourceCommand{Cmd: CmdDestroyVertexArray, ID: uint64(id)})
}

// CreateShader implements gpucore.Driver.
func (d *Driver) CreateShader(desc gpucore.ShaderDesc) (gpucore.ShaderID, error) {
	if err := d.takeFailure(CmdCreateShader); err != nil {
		return gpucore.InvalidID, err
	}
	if desc.Kind != gpucore.ShaderSprite && desc.Kind != gpucore.ShaderPrimitive {
		return gpucore.InvalidID, fmt.Errorf("%w: shader kind %v", gpucore.ErrInvalidDescriptor, desc.Kind)
	}
	id := gpucore.ShaderID(d.allocID())
	d.shaders[id] = make(map[string][]float32)
	d.record(ResourceCommand{Cmd: CmdCreateShader, ID: uint64(id)})
	return id, nil
}

// BindShader implements gpucore.Driver.
func (d *Driver) BindShader(id gpucore.ShaderID) {
	d.shader = id
	d.record(ResourceCommand{Cmd: CmdBindShader, ID: uint64(id)})
}

// SetUniform implements gpucore.Driver.
func (d *Driver) SetUniform(id gpucore.ShaderID, name string, data []float32) {
	u, ok := d.shaders[id]
	if !ok {
		return
	}
	v := append([]float32(nil), data...)
	u[name] = v
	d.record(SetUniformCommand{Shader: id, Name: name, Data: v})
}

// DestroyShader implements gpucore.Driver.
func (d *Driver) DestroyShader(id gpucore.ShaderID) {
	if _, ok := d.shaders[id]; !ok {
		return
	}
	delete(d.shaders, id)
	if d.shader == id {
		d.shader = gpucore.InvalidID
	}
	d.record(ResourceCommand{Cmd: CmdDestroyShader, ID: uint64(id)})
}

// CreateFramebuffer implements gpucore.Driver.
func (d *Driver) CreateFramebuffer(color gpucore.TextureID) (gpucore.FramebufferID, error) {
	if err := d.takeFailure(CmdCreateFramebuffer); err != nil {
		return gpucore.InvalidID, err
	}
	t, ok := d.textures[color]
	if !ok || !t.Desc.RenderTarget {
		return gpucore.InvalidID, fmt.Errorf("%w: render target texture %d", gpucore.ErrUnknownResource, color)
	}
	id := gpucore.FramebufferID(d.allocID())
	d.framebuffers[id] = color
	d.record(ResourceCommand{Cmd: CmdCreateFramebuffer, ID: uint64(id)})
	return id, nil
}

// BindFramebuffer implements gpucore.Driver.
func (d *Driver) BindFramebuffer(id gpucore.FramebufferID) {
	d.framebuffer = id
	d.record(ResourceCommand{Cmd: CmdBindFramebuffer, ID: uint64(id)})
}

// DestroyFramebuffer implements gpucore.Driver.
func (d *Driver) DestroyFramebuffer(id gpucore.FramebufferID) {
	if _, ok := d.framebuffers[id]; !ok {
		return
	}
	delete(d.framebuffers, id)
	if d.framebuffer == id {
		d.framebuffer = gpucore.InvalidID
	}
	d.record(ResourceCommand{Cmd: CmdDestroyFramebuffer, ID: uint64(id)})
}

// Viewport implements gpucore.Driver.
func (d *Driver) Viewport(x, y, width, height int) {
	d.record(ViewportCommand{X: x, Y: y, Width: width, Height: height})
}

// SetBlendMode implements gpucore.Driver.
func (d *Driver) SetBlendMode(mode gpucore.BlendMode) {
	d.blend = mode
	d.record(SetBlendModeCommand{Mode: mode})
}

// Clear implements gpucore.Driver.
func (d *Driver) Clear(c gputypes.Color) {
	d.record(ClearCommand{Framebuffer: d.framebuffer, Color: c})
}

// DrawIndexed implements gpucore.Driver.
func (d *Driver) DrawIndexed(mode gpucore.DrawMode, first, count int) {
	if count <= 0 {
		return
	}
	d.record(DrawCommand{
		Mode:        mode,
		First:       first,
		Count:       count,
		Blend:       d.blend,
		Shader:      d.shader,
		VertexArray: d.array,
		Framebuffer: d.framebuffer,
		Units:       append([]gpucore.TextureID(nil), d.units...),
	})
}

// EndFrame implements gpucore.Driver.
func (d *Driver) EndFrame() error {
	if err := d.takeFailure(CmdEndFrame); err != nil {
		return err
	}
	d.frames++
	d.record(ResourceCommand{Cmd: CmdEndFrame})
	return nil
}

// Destroy implements gpucore.Driver.
func (d *Driver) Destroy() {
	clear(d.textures)
	clear(d.buffers)
	clear(d.arrays)
	clear(d.shaders)
	clear(d.framebuffers)
	clear(d.units)
	d.shader, d.array, d.framebuffer = gpucore.InvalidID, gpucore.InvalidID, gpucore.InvalidID
}

// Commands returns every command recorded since the last Reset.
func (d *Driver) Commands() []Command {
	return d.commands
}

// Draws returns the recorded draw commands in submission order.
func (d *Driver) Draws() []DrawCommand {
	var draws []DrawCommand
	for _, c := range d.commands {
		if dc, ok := c.(DrawCommand); ok {
			draws = append(draws, dc)
		}
	}
	return draws
}

// Count returns how many commands of the given type were recorded.
func (d *Driver) Count(cmd CommandType) int {
	n := 0
	for _, c := range d.commands {
		if c.Type() == cmd {
			n++
		}
	}
	return n
}

// Reset clears the command log. Resources and binding state are kept.
func (d *Driver) Reset() {
	d.commands = d.commands[:0]
}

// Frames returns the number of EndFrame calls.
func (d *Driver) Frames() int { return d.frames }

// Texture returns the recorded state of a live texture.
func (d *Driver) Texture(id gpucore.TextureID) (*Texture, bool) {
	t, ok := d.textures[id]
	return t, ok
}

// LiveTextures returns the number of textures not yet destroyed.
func (d *Driver) LiveTextures() int { return len(d.textures) }

// LiveBuffers returns the number of buffers not yet destroyed.
func (d *Driver) LiveBuffers() int { return len(d.buffers) }

// BufferData returns the CPU shadow of a live buffer.
func (d *Driver) BufferData(id gpucore.BufferID) ([]byte, bool) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, false
	}
	return b.data, true
}

// VertexArray returns the recorded state of a live vertex array.
func (d *Driver) VertexArray(id gpucore.VertexArrayID) (*VertexArray, bool) {
	a, ok := d.arrays[id]
	return a, ok
}

// Uniform returns the last value set for a shader uniform.
func (d *Driver) Uniform(id gpucore.ShaderID, name string) ([]float32, bool) {
	u, ok := d.shaders[id]
	if !ok {
		return nil, false
	}
	v, ok := u[name]
	return v, ok
}

// Unit returns the texture bound to a unit.
func (d *Driver) Unit(unit int) gpucore.TextureID {
	if unit < 0 || unit >= len(d.units) {
		return gpucore.InvalidID
	}
	return d.units[unit]
}

// compile-time interface check
var _ gpucore.Driver = (*Driver)(nil)
