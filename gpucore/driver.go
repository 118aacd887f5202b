// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Driver errors.
var (
	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource")

	// ErrInvalidDescriptor is returned for zero-sized or malformed descriptors.
	ErrInvalidDescriptor = errors.New("gpucore: invalid descriptor")

	// ErrSizeMismatch is returned when uploaded data does not match the
	// destination size.
	ErrSizeMismatch = errors.New("gpucore: data size mismatch")
)

// Driver is the primitive operation set the device consumes.
//
// Drivers hold binding state the way an immediate-mode API does: the texture
// bound to each unit, the shader, the vertex array, the framebuffer and the
// blend mode persist until changed and apply to every following draw.
//
// Drivers are not safe for concurrent use. Calls that fail to reach the GPU
// report errors where the signature allows; binds and draws on unknown IDs
// are ignored.
type Driver interface {
	// Name identifies the backend.
	Name() string

	// Caps reports driver limits.
	Caps() Caps

	// CreateTexture allocates an uninitialized texture.
	CreateTexture(desc TextureDesc) (TextureID, error)

	// WriteTexture uploads a full image of tightly packed RGBA8 pixels.
	WriteTexture(id TextureID, pixels []byte) error

	// DestroyTexture frees the texture. Units bound to it become empty.
	DestroyTexture(id TextureID)

	// BindTexture binds a texture to a unit. InvalidID clears the unit.
	BindTexture(unit int, id TextureID)

	// CreateBuffer allocates a buffer of size bytes.
	CreateBuffer(kind BufferKind, size int) (BufferID, error)

	// WriteBuffer copies data into the buffer at offset.
	WriteBuffer(id BufferID, offset int, data []byte) error

	// DestroyBuffer frees the buffer.
	DestroyBuffer(id BufferID)

	// CreateVertexArray ties a layout to a vertex and an index buffer.
	CreateVertexArray(layout VertexLayout, vertices, indices BufferID) (VertexArrayID, error)

	// BindVertexArray selects the vertex array used by draws.
	BindVertexArray(id VertexArrayID)

	// DestroyVertexArray frees the vertex array; its buffers are untouched.
	DestroyVertexArray(id VertexArrayID)

	// CreateShader builds one of the built-in programs.
	CreateShader(desc ShaderDesc) (ShaderID, error)

	// BindShader selects the program used by draws.
	BindShader(id ShaderID)

	// SetUniform stores a named uniform value on a program.
	SetUniform(id ShaderID, name string, data []float32)

	// DestroyShader frees the program.
	DestroyShader(id ShaderID)

	// CreateFramebuffer wraps a render-target texture.
	CreateFramebuffer(color TextureID) (FramebufferID, error)

	// BindFramebuffer selects the render target. InvalidID selects the screen.
	BindFramebuffer(id FramebufferID)

	// DestroyFramebuffer frees the framebuffer; its texture is untouched.
	DestroyFramebuffer(id FramebufferID)

	// Viewport sets the drawable region of the bound framebuffer.
	Viewport(x, y, width, height int)

	// SetBlendMode selects the blend state used by draws.
	SetBlendMode(mode BlendMode)

	// Clear fills the bound framebuffer with a color.
	Clear(c gputypes.Color)

	// DrawIndexed draws count indices starting at index first.
	DrawIndexed(mode DrawMode, first, count int)

	// EndFrame submits all work recorded since the previous EndFrame.
	EndFrame() error

	// Destroy releases every resource the driver owns.
	Destroy()
}
