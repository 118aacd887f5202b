// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/gpucore"
)

// Uniform block sizes in bytes. A mat3x3<f32> occupies three vec4 columns.
const (
	matrixBytes = 48
	vec4Bytes   = 16

	spriteUniformSize    = matrixBytes
	primitiveUniformSize = 2*matrixBytes + vec4Bytes
)

// uniformSlot places a named uniform inside a program's uniform block.
type uniformSlot struct {
	offset int // bytes
	floats int
}

var uniformSlots = map[gpucore.ShaderKind]map[string]uniformSlot{
	gpucore.ShaderSprite: {
		gpucore.UniformProjection: {offset: 0, floats: 12},
	},
	gpucore.ShaderPrimitive: {
		gpucore.UniformProjection: {offset: 0, floats: 12},
		gpucore.UniformTransform:  {offset: matrixBytes, floats: 12},
		gpucore.UniformTint:       {offset: 2 * matrixBytes, floats: 4},
	},
}

// uniformSize returns the uniform block size of a program kind.
func uniformSize(kind gpucore.ShaderKind) int {
	if kind == gpucore.ShaderSprite {
		return spriteUniformSize
	}
	return primitiveUniformSize
}

// spriteSource generates the sprite program for n texture units. Each unit
// has its own texture and sampler binding; the fragment stage selects one
// with the per-vertex unit index.
func spriteSource(n int) string {
	var b strings.Builder
	b.WriteString(`struct Uniforms {
    projection: mat3x3<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
`)
	for i := range n {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var t%d: texture_2d<f32>;\n", 1+2*i, i)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var s%d: sampler;\n", 2+2*i, i)
	}
	b.WriteString(`
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
    @location(2) color: vec4<f32>,
    @location(3) unit: f32,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
    @location(2) @interpolate(flat) unit: u32,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let p = u.projection * vec3<f32>(in.position, 1.0);
    out.position = vec4<f32>(p.xy, 0.0, 1.0);
    out.uv = in.uv;
    out.color = in.color;
    out.unit = u32(in.unit + 0.5);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    var c: vec4<f32>;
    switch in.unit {
`)
	for i := 1; i < n; i++ {
		fmt.Fprintf(&b, "        case %du: { c = textureSampleLevel(t%d, s%d, in.uv, 0.0); }\n", i, i, i)
	}
	b.WriteString(`        default: { c = textureSampleLevel(t0, s0, in.uv, 0.0); }
    }
    return c * in.color;
}
`)
	return b.String()
}

const primitiveSource = `struct Uniforms {
    projection: mat3x3<f32>,
    transform: mat3x3<f32>,
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) color: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let p = u.projection * (u.transform * vec3<f32>(in.position, 1.0));
    out.position = vec4<f32>(p.xy, 0.0, 1.0);
    out.color = in.color * u.tint;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// shaderSource returns the WGSL source of a program.
func shaderSource(desc gpucore.ShaderDesc) (string, error) {
	switch desc.Kind {
	case gpucore.ShaderSprite:
		if desc.MaxTextures < 1 {
			return "", fmt.Errorf("%w: sprite shader with %d textures", gpucore.ErrInvalidDescriptor, desc.MaxTextures)
		}
		return spriteSource(desc.MaxTextures), nil
	case gpucore.ShaderPrimitive:
		return primitiveSource, nil
	default:
		return "", fmt.Errorf("%w: shader kind %v", gpucore.ErrInvalidDescriptor, desc.Kind)
	}
}

// compileSPIRV compiles WGSL to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// module is a compiled program shared by every shader of the same kind and
// unit count.
type module struct {
	kind       gpucore.ShaderKind
	units      int
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	refs       int
}

type moduleKey struct {
	kind  gpucore.ShaderKind
	units int
}

// program is a driver shader: a module plus its uniform values.
type program struct {
	mod      *module
	uniforms []byte
}

// setUniform stores data in the uniform block. Names the program does not
// declare are ignored.
func (p *program) setUniform(name string, data []float32) {
	slot, ok := uniformSlots[p.mod.kind][name]
	if !ok {
		return
	}
	n := min(len(data), slot.floats)
	for i := range n {
		binary.LittleEndian.PutUint32(p.uniforms[slot.offset+4*i:], math.Float32bits(data[i]))
	}
}

// createModule compiles the program and builds its layouts.
func (d *Driver) createModule(desc gpucore.ShaderDesc) (*module, error) {
	source, err := shaderSource(desc)
	if err != nil {
		return nil, err
	}
	code, err := compileSPIRV(source)
	if err != nil {
		return nil, err
	}
	label := strings.ToLower(desc.Kind.String())
	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create %s shader module: %w", label, err)
	}
	m := &module{kind: desc.Kind, units: desc.MaxTextures, shader: shader}
	if desc.Kind != gpucore.ShaderSprite {
		m.units = 0
	}

	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for i := range m.units {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(1 + 2*i), //nolint:gosec // unit count is at most 16
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(2 + 2*i), //nolint:gosec // unit count is at most 16
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	m.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		d.destroyModule(m)
		return nil, fmt.Errorf("native: create %s bind group layout: %w", label, err)
	}
	m.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{m.bindLayout},
	})
	if err != nil {
		d.destroyModule(m)
		return nil, fmt.Errorf("native: create %s pipeline layout: %w", label, err)
	}
	return m, nil
}

// destroyModule releases the module's pipelines and GPU objects in reverse
// creation order.
func (d *Driver) destroyModule(m *module) {
	d.pipelines.evict(m)
	if m.pipeLayout != nil {
		d.device.DestroyPipelineLayout(m.pipeLayout)
		m.pipeLayout = nil
	}
	if m.bindLayout != nil {
		d.device.DestroyBindGroupLayout(m.bindLayout)
		m.bindLayout = nil
	}
	if m.shader != nil {
		d.device.DestroyShaderModule(m.shader)
		m.shader = nil
	}
}
