// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/gpucore"
)

func TestHashLayout(t *testing.T) {
	moved := gpucore.VertexLayout{
		Stride: 12,
		Attributes: []gpucore.VertexAttribute{
			{Location: 0, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
			{Location: 1, Format: gputypes.VertexFormatUnorm8x4, Offset: 4},
		},
	}
	tests := []struct {
		name string
		a, b gpucore.VertexLayout
		same bool
	}{
		{"identical", primitiveLayout, primitiveLayout, true},
		{"stride", primitiveLayout, gpucore.VertexLayout{Stride: 16, Attributes: primitiveLayout.Attributes}, false},
		{"offset", primitiveLayout, moved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashLayout(tt.a) == hashLayout(tt.b); got != tt.same {
				t.Errorf("hashLayout equal = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestPipelineCacheEvict(t *testing.T) {
	d, _ := newTestDriver(t)
	sh, err := d.CreateShader(gpucore.ShaderDesc{Kind: gpucore.ShaderPrimitive})
	if err != nil {
		t.Fatal(err)
	}
	mod := d.programs[sh].mod

	key := pipelineKey{mod: mod, layout: hashLayout(primitiveLayout), format: gputypes.TextureFormatRGBA8Unorm}
	if _, err := d.pipelines.get(key, primitiveLayout); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if _, err := d.pipelines.get(key, primitiveLayout); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if d.pipelines.hits != 1 || d.pipelines.misses != 1 {
		t.Errorf("hits = %d, misses = %d, want 1 and 1", d.pipelines.hits, d.pipelines.misses)
	}
	lines := key
	lines.mode = gpucore.DrawLines
	if _, err := d.pipelines.get(lines, primitiveLayout); err != nil {
		t.Fatal(err)
	}
	if d.pipelines.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.pipelines.Len())
	}

	d.DestroyShader(sh)
	if d.pipelines.Len() != 0 {
		t.Errorf("Len() after destroying the program = %d, want 0", d.pipelines.Len())
	}
}
