// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/gpucore"
)

// pipelineKey identifies a render pipeline. Blend mode, topology, vertex
// layout and target format are baked into WebGPU pipelines, so each
// combination a program is drawn with gets its own.
type pipelineKey struct {
	mod    *module
	blend  gpucore.BlendMode
	mode   gpucore.DrawMode
	layout uint64
	format gputypes.TextureFormat
}

// pipelineCache creates render pipelines on first use and keeps them until
// their module is destroyed.
type pipelineCache struct {
	device    hal.Device
	pipelines map[pipelineKey]hal.RenderPipeline

	hits, misses uint64
}

func newPipelineCache(device hal.Device) *pipelineCache {
	return &pipelineCache{
		device:    device,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
}

// hashLayout returns a stable hash of a vertex layout.
func hashLayout(layout gpucore.VertexLayout) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(layout.Stride)
	for _, a := range layout.Attributes {
		write(uint64(a.Location))
		write(uint64(a.Format))
		write(a.Offset)
	}
	return h.Sum64()
}

// get returns the pipeline for key, creating it when missing.
func (c *pipelineCache) get(key pipelineKey, layout gpucore.VertexLayout) (hal.RenderPipeline, error) {
	if p, ok := c.pipelines[key]; ok {
		c.hits++
		return p, nil
	}
	attrs := make([]gputypes.VertexAttribute, len(layout.Attributes))
	for i, a := range layout.Attributes {
		attrs[i] = gputypes.VertexAttribute{Format: a.Format, Offset: a.Offset, ShaderLocation: a.Location}
	}
	label := fmt.Sprintf("%v_%v_%v", key.mod.kind, key.blend, key.mode)
	p, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: key.mod.pipeLayout,
		Vertex: hal.VertexState{
			Module:     key.mod.shader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: layout.Stride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     key.mod.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    key.format,
				Blend:     key.blend.BlendState(),
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: key.mode.Topology(),
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline %s: %w", label, err)
	}
	c.pipelines[key] = p
	c.misses++
	return p, nil
}

// evict destroys every pipeline built from m.
func (c *pipelineCache) evict(m *module) {
	for key, p := range c.pipelines {
		if key.mod == m {
			c.device.DestroyRenderPipeline(p)
			delete(c.pipelines, key)
		}
	}
}

// Len returns the number of cached pipelines.
func (c *pipelineCache) Len() int { return len(c.pipelines) }
