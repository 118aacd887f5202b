// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Resource IDs
//
// These opaque IDs represent GPU resources. Each driver implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// VertexArrayID is an opaque handle to a vertex layout bound to a vertex and
// an index buffer.
type VertexArrayID uint64

// ShaderID is an opaque handle to a shader program.
type ShaderID uint64

// FramebufferID is an opaque handle to an offscreen render target.
type FramebufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
// Passed to BindFramebuffer it selects the screen.
const InvalidID = 0

// Uniform names understood by the built-in shaders.
const (
	// UniformProjection maps logical render-target coordinates to clip
	// space: a mat3x3 as three vec4 columns (12 floats).
	UniformProjection = "projection"

	// UniformTransform is the world transform of primitive geometry, laid
	// out like UniformProjection.
	UniformTransform = "transform"

	// UniformTint multiplies primitive vertex colors: premultiplied RGBA
	// (4 floats).
	UniformTint = "tint"
)

// BufferKind selects what a buffer is bound as.
type BufferKind uint8

// Buffer kinds.
const (
	BufferVertex BufferKind = iota + 1
	BufferIndex
)

// String returns the buffer kind name.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "Vertex"
	case BufferIndex:
		return "Index"
	default:
		return fmt.Sprintf("BufferKind(%d)", int(k))
	}
}

// DrawMode is the primitive topology of an indexed draw.
type DrawMode uint8

// Draw modes.
const (
	// DrawTriangles draws a triangle list.
	DrawTriangles DrawMode = iota
	// DrawLines draws a list of one pixel wide line segments.
	DrawLines
)

// String returns the draw mode name.
func (m DrawMode) String() string {
	switch m {
	case DrawTriangles:
		return "Triangles"
	case DrawLines:
		return "Lines"
	default:
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
}

// Topology returns the WebGPU primitive topology for the mode.
func (m DrawMode) Topology() gputypes.PrimitiveTopology {
	if m == DrawLines {
		return gputypes.PrimitiveTopologyLineList
	}
	return gputypes.PrimitiveTopologyTriangleList
}

// ShaderKind selects one of the built-in shader programs.
type ShaderKind uint8

// Shader kinds.
const (
	// ShaderSprite samples up to MaxTextures units selected per vertex.
	ShaderSprite ShaderKind = iota + 1
	// ShaderPrimitive draws per-vertex colored geometry.
	ShaderPrimitive
)

// String returns the shader kind name.
func (k ShaderKind) String() string {
	switch k {
	case ShaderSprite:
		return "Sprite"
	case ShaderPrimitive:
		return "Primitive"
	default:
		return fmt.Sprintf("ShaderKind(%d)", int(k))
	}
}

// ScaleMode is the texture sampling filter.
type ScaleMode uint8

// Scale modes.
const (
	ScaleLinear ScaleMode = iota
	ScaleNearest
)

// FilterMode returns the WebGPU filter for the scale mode.
func (s ScaleMode) FilterMode() gputypes.FilterMode {
	if s == ScaleNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// WrapMode is the texture addressing mode outside [0,1].
type WrapMode uint8

// Wrap modes.
const (
	WrapClamp WrapMode = iota
	WrapRepeat
)

// AddressMode returns the WebGPU address mode for the wrap mode.
func (w WrapMode) AddressMode() gputypes.AddressMode {
	if w == WrapRepeat {
		return gputypes.AddressModeRepeat
	}
	return gputypes.AddressModeClampToEdge
}

// TextureDesc describes a 2D texture. Pixel data is always tightly packed
// RGBA8 with premultiplied alpha.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the device-pixel dimensions.
	Width, Height int

	// Scale is the sampling filter.
	Scale ScaleMode

	// Wrap is the addressing mode. Callers only request WrapRepeat for
	// power-of-two textures.
	Wrap WrapMode

	// RenderTarget marks textures that back a framebuffer.
	RenderTarget bool
}

// Size returns the texture size in bytes.
func (d TextureDesc) Size() int {
	return d.Width * d.Height * 4
}

// VertexAttribute describes one attribute in an interleaved vertex.
type VertexAttribute struct {
	// Location is the shader input location.
	Location uint32

	// Format is the attribute data format.
	Format gputypes.VertexFormat

	// Offset is the byte offset from the start of the vertex.
	Offset uint64
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	// Stride is the size of one vertex in bytes.
	Stride uint64

	// Attributes describes the vertex attributes.
	Attributes []VertexAttribute
}

// ShaderDesc describes a built-in shader program.
type ShaderDesc struct {
	// Kind selects the program.
	Kind ShaderKind

	// MaxTextures is the number of texture units a sprite shader samples.
	MaxTextures int
}

// Caps reports driver limits.
type Caps struct {
	// MaxTextureUnits is the number of texture units usable by one draw.
	MaxTextureUnits int

	// MaxTextureSize is the largest texture dimension supported.
	MaxTextureSize int
}
