// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestBlendModeString(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want string
	}{
		{BlendNormal, "Normal"},
		{BlendAdd, "Add"},
		{BlendMultiply, "Multiply"},
		{BlendScreen, "Screen"},
		{BlendNone, "None"},
		{BlendMode(99), "BlendMode(99)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("BlendMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestBlendState(t *testing.T) {
	if BlendNone.BlendState() != nil {
		t.Error("BlendNone.BlendState() should be nil")
	}

	normal := BlendNormal.BlendState()
	if normal.Color.SrcFactor != gputypes.BlendFactorOne ||
		normal.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("BlendNormal color = %+v, want premultiplied source-over", normal.Color)
	}

	add := BlendAdd.BlendState()
	if add.Color.DstFactor != gputypes.BlendFactorOne {
		t.Errorf("BlendAdd color dst = %v, want One", add.Color.DstFactor)
	}

	for _, m := range BlendModes() {
		if !m.Valid() {
			t.Errorf("BlendModes() returned invalid mode %v", m)
		}
	}
	if len(BlendModes()) != int(blendModeCount) {
		t.Errorf("len(BlendModes()) = %d, want %d", len(BlendModes()), blendModeCount)
	}
}

func TestEnumStrings(t *testing.T) {
	if DrawLines.String() != "Lines" || DrawTriangles.String() != "Triangles" {
		t.Error("DrawMode.String() mismatch")
	}
	if DrawLines.Topology() != gputypes.PrimitiveTopologyLineList {
		t.Error("DrawLines.Topology() should be LineList")
	}
	if ShaderSprite.String() != "Sprite" || ShaderPrimitive.String() != "Primitive" {
		t.Error("ShaderKind.String() mismatch")
	}
	if BufferIndex.String() != "Index" {
		t.Error("BufferKind.String() mismatch")
	}
	if (TextureDesc{Width: 4, Height: 2}).Size() != 32 {
		t.Error("TextureDesc.Size() mismatch")
	}
}
