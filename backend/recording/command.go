// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/gpucore"
)

// CommandType identifies the type of a recorded driver call.
type CommandType uint8

const (
	// Texture commands
	CmdCreateTexture  CommandType = iota // Allocate a texture
	CmdWriteTexture                      // Upload texture pixels
	CmdDestroyTexture                    // Free a texture
	CmdBindTexture                       // Bind a texture to a unit

	// Buffer commands
	CmdCreateBuffer  // Allocate a buffer
	CmdWriteBuffer   // Upload buffer data
	CmdDestroyBuffer // Free a buffer

	// Vertex array commands
	CmdCreateVertexArray
	CmdBindVertexArray
	CmdDestroyVertexArray

	// Shader commands
	CmdCreateShader
	CmdBindShader
	CmdSetUniform
	CmdDestroyShader

	// Target commands
	CmdCreateFramebuffer
	CmdBindFramebuffer
	CmdDestroyFramebuffer
	CmdViewport

	// Drawing commands
	CmdSetBlendMode
	CmdClear
	CmdDraw
	CmdEndFrame
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdCreateTexture:      "CreateTexture",
	CmdWriteTexture:       "WriteTexture",
	CmdDestroyTexture:     "DestroyTexture",
	CmdBindTexture:        "BindTexture",
	CmdCreateBuffer:       "CreateBuffer",
	CmdWriteBuffer:        "WriteBuffer",
	CmdDestroyBuffer:      "DestroyBuffer",
	CmdCreateVertexArray:  "CreateVertexArray",
	CmdBindVertexArray:    "BindVertexArray",
	CmdDestroyVertexArray: "DestroyVertexArray",
	CmdCreateShader:       "CreateShader",
	CmdBindShader:         "BindShader",
	CmdSetUniform:         "SetUniform",
	CmdDestroyShader:      "DestroyShader",
	CmdCreateFramebuffer:  "CreateFramebuffer",
	CmdBindFramebuffer:    "BindFramebuffer",
	CmdDestroyFramebuffer: "DestroyFramebuffer",
	CmdViewport:           "Viewport",
	CmdSetBlendMode:       "SetBlendMode",
	CmdClear:              "Clear",
	CmdDraw:               "Draw",
	CmdEndFrame:           "EndFrame",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all recorded commands.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// ResourceCommand records a call that only names a resource: creation,
// destruction and binding of buffers, vertex arrays, shaders and
// framebuffers, plus EndFrame.
type ResourceCommand struct {
	Cmd CommandType
	ID  uint64
}

// Type implements Command.
func (c ResourceCommand) Type() CommandType { return c.Cmd }

// CreateTextureCommand records a texture allocation.
type CreateTextureCommand struct {
	ID   gpucore.TextureID
	Desc gpucore.TextureDesc
}

// Type implements Command.
func (CreateTextureCommand) Type() CommandType { return CmdCreateTexture }

// WriteTextureCommand records a pixel upload.
type WriteTextureCommand struct {
	ID    gpucore.TextureID
	Bytes int
}

// Type implements Command.
func (WriteTextureCommand) Type() CommandType { return CmdWriteTexture }

// DestroyTextureCommand records a texture release.
type DestroyTextureCommand struct {
	ID gpucore.TextureID
}

// Type implements Command.
func (DestroyTextureCommand) Type() CommandType { return CmdDestroyTexture }

// BindTextureCommand records a texture unit binding.
type BindTextureCommand struct {
	Unit int
	ID   gpucore.TextureID
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// WriteBufferCommand records a buffer upload.
type WriteBufferCommand struct {
	ID     gpucore.BufferID
	Offset int
	Bytes  int
}

// Type implements Command.
func (WriteBufferCommand) Type() CommandType { return CmdWriteBuffer }

// SetUniformCommand records a uniform update.
type SetUniformCommand struct {
	Shader gpucore.ShaderID
	Name   string
	Data   []float32
}

// Type implements Command.
func (SetUniformCommand) Type() CommandType { return CmdSetUniform }

// ViewportCommand records a viewport change.
type ViewportCommand struct {
	X, Y, Width, Height int
}

// Type implements Command.
func (ViewportCommand) Type() CommandType { return CmdViewport }

// SetBlendModeCommand records a blend mode change.
type SetBlendModeCommand struct {
	Mode gpucore.BlendMode
}

// Type implements Command.
func (SetBlendModeCommand) Type() CommandType { return CmdSetBlendMode }

// ClearCommand records a framebuffer clear.
type ClearCommand struct {
	Framebuffer gpucore.FramebufferID
	Color       gputypes.Color
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// DrawCommand records an indexed draw together with the binding state it
// executed under.
type DrawCommand struct {
	Mode        gpucore.DrawMode
	First       int
	Count       int
	Blend       gpucore.BlendMode
	Shader      gpucore.ShaderID
	VertexArray gpucore.VertexArrayID
	Framebuffer gpucore.FramebufferID

	// Units is a copy of the texture unit table at draw time.
	Units []gpucore.TextureID
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }
