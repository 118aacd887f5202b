// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/gpucore"
)

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		cmd  CommandType
		want string
	}{
		{CmdCreateTexture, "CreateTexture"},
		{CmdBindTexture, "BindTexture"},
		{CmdDraw, "Draw"},
		{CmdEndFrame, "EndFrame"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("CommandType(%d).String() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestTextureLifecycle(t *testing.T) {
	d := New(WithMaxTextureUnits(2))

	id, err := d.CreateTexture(gpucore.TextureDesc{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if err := d.WriteTexture(id, make([]byte, 16)); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	if err := d.WriteTexture(id, make([]byte, 15)); !errors.Is(err, gpucore.ErrSizeMismatch) {
		t.Errorf("short WriteTexture() error = %v, want ErrSizeMismatch", err)
	}

	d.BindTexture(1, id)
	if d.Unit(1) != id {
		t.Errorf("Unit(1) = %d, want %d", d.Unit(1), id)
	}

	d.DestroyTexture(id)
	if d.Unit(1) != gpucore.InvalidID {
		t.Error("destroying a bound texture should clear its unit")
	}
	if d.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d, want 0", d.LiveTextures())
	}
	if err := d.WriteTexture(id, make([]byte, 16)); !errors.Is(err, gpucore.ErrUnknownResource) {
		t.Errorf("WriteTexture(destroyed) error = %v, want ErrUnknownResource", err)
	}
}

func TestCreateTextureValidation(t *testing.T) {
	d := New(WithMaxTextureSize(64))
	tests := []struct {
		name string
		desc gpucore.TextureDesc
	}{
		{"zero", gpucore.TextureDesc{}},
		{"negative", gpucore.TextureDesc{Width: -1, Height: 4}},
		{"too large", gpucore.TextureDesc{Width: 65, Height: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.CreateTexture(tt.desc); !errors.Is(err, gpucore.ErrInvalidDescriptor) {
				t.Errorf("CreateTexture() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestDrawSnapshotsState(t *testing.T) {
	d := New(WithMaxTextureUnits(2))
	tex, _ := d.CreateTexture(gpucore.TextureDesc{Width: 1, Height: 1})
	vb, _ := d.CreateBuffer(gpucore.BufferVertex, 80)
	ib, _ := d.CreateBuffer(gpucore.BufferIndex, 12)
	vao, err := d.CreateVertexArray(gpucore.VertexLayout{Stride: 20}, vb, ib)
	if err != nil {
		t.Fatalf("CreateVertexArray() error = %v", err)
	}
	sh, _ := d.CreateShader(gpucore.ShaderDesc{Kind: gpucore.ShaderSprite, MaxTextures: 2})

	d.BindShader(sh)
	d.BindVertexArray(vao)
	d.BindTexture(0, tex)
	d.SetBlendMode(gpucore.BlendAdd)
	d.DrawIndexed(gpucore.DrawTriangles, 0, 6)
	d.BindTexture(0, gpucore.InvalidID)
	d.DrawIndexed(gpucore.DrawTriangles, 6, 0) // empty draws are not recorded

	draws := d.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	got := draws[0]
	if got.Blend != gpucore.BlendAdd || got.Shader != sh || got.VertexArray != vao || got.Count != 6 {
		t.Errorf("draw = %+v", got)
	}
	if got.Units[0] != tex {
		t.Errorf("draw Units[0] = %d, want %d (snapshot must not follow later binds)", got.Units[0], tex)
	}
}

func TestBuffersAndUniforms(t *testing.T) {
	d := New()
	vb, _ := d.CreateBuffer(gpucore.BufferVertex, 4)
	if err := d.WriteBuffer(vb, 1, []byte{7, 8}); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}
	data, _ := d.BufferData(vb)
	if data[1] != 7 || data[2] != 8 {
		t.Errorf("BufferData() = %v", data)
	}
	if err := d.WriteBuffer(vb, 3, []byte{1, 2}); !errors.Is(err, gpucore.ErrSizeMismatch) {
		t.Errorf("overflowing WriteBuffer() error = %v, want ErrSizeMismatch", err)
	}

	ib, _ := d.CreateBuffer(gpucore.BufferIndex, 4)
	if _, err := d.CreateVertexArray(gpucore.VertexLayout{}, ib, vb); !errors.Is(err, gpucore.ErrUnknownResource) {
		t.Errorf("swapped CreateVertexArray() error = %v, want ErrUnknownResource", err)
	}

	sh, _ := d.CreateShader(gpucore.ShaderDesc{Kind: gpucore.ShaderPrimitive})
	d.SetUniform(sh, "alpha", []float32{0.5})
	if v, ok := d.Uniform(sh, "alpha"); !ok || v[0] != 0.5 {
		t.Errorf("Uniform(alpha) = %v, %v", v, ok)
	}
}

func TestFailNext(t *testing.T) {
	d := New()
	boom := errors.New("boom")
	d.FailNext(CmdCreateTexture, boom)

	if _, err := d.CreateTexture(gpucore.TextureDesc{Width: 1, Height: 1}); !errors.Is(err, boom) {
		t.Errorf("CreateTexture() error = %v, want boom", err)
	}
	if _, err := d.CreateTexture(gpucore.TextureDesc{Width: 1, Height: 1}); err != nil {
		t.Errorf("second CreateTexture() error = %v, want nil", err)
	}
}

func TestFramebufferAndClear(t *testing.T) {
	d := New()
	plain, _ := d.CreateTexture(gpucore.TextureDesc{Width: 4, Height: 4})
	if _, err := d.CreateFramebuffer(plain); err == nil {
		t.Error("CreateFramebuffer() on a non render-target texture should fail")
	}
	rt, _ := d.CreateTexture(gpucore.TextureDesc{Width: 4, Height: 4, RenderTarget: true})
	fb, err := d.CreateFramebuffer(rt)
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	d.BindFramebuffer(fb)
	d.Clear(gputypes.Color{A: 1})
	if err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}

	if d.Count(CmdClear) != 1 || d.Frames() != 1 {
		t.Errorf("Count(Clear) = %d, Frames() = %d, want 1, 1", d.Count(CmdClear), d.Frames())
	}
	for _, c := range d.Commands() {
		if cc, ok := c.(ClearCommand); ok && cc.Framebuffer != fb {
			t.Errorf("Clear framebuffer = %d, want %d", cc.Framebuffer, fb)
		}
	}

	d.Reset()
	if len(d.Commands()) != 0 {
		t.Errorf("len(Commands()) after Reset = %d, want 0", len(d.Commands()))
	}
}
