// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BlendMode selects how a draw composites over the render target.
// All modes assume premultiplied alpha.
type BlendMode uint8

// Blend modes.
const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendScreen
	// BlendNone writes source pixels without blending.
	BlendNone

	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	BlendNormal:   "Normal",
	BlendAdd:      "Add",
	BlendMultiply: "Multiply",
	BlendScreen:   "Screen",
	BlendNone:     "None",
}

// String returns the blend mode name.
func (m BlendMode) String() string {
	if m < blendModeCount {
		return blendModeNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// Valid reports whether m is a known blend mode.
func (m BlendMode) Valid() bool {
	return m < blendModeCount
}

// BlendModes returns every supported blend mode in declaration order.
func BlendModes() []BlendMode {
	modes := make([]BlendMode, blendModeCount)
	for i := range modes {
		modes[i] = BlendMode(i)
	}
	return modes
}

// BlendState returns the WebGPU blend state for the mode. It returns nil
// for BlendNone, which disables blending on the color target.
func (m BlendMode) BlendState() *gputypes.BlendState {
	alpha := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	var color gputypes.BlendComponent
	switch m {
	case BlendNone:
		return nil
	case BlendAdd:
		color = component(gputypes.BlendFactorOne, gputypes.BlendFactorOne)
		alpha = color
	case BlendMultiply:
		color = component(gputypes.BlendFactorDst, gputypes.BlendFactorOneMinusSrcAlpha)
	case BlendScreen:
		color = component(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrc)
	default:
		color = alpha
	}
	return &gputypes.BlendState{Color: color, Alpha: alpha}
}

func component(src, dst gputypes.BlendFactor) gputypes.BlendComponent {
	return gputypes.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: gputypes.BlendOperationAdd}
}
