// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stage

import (
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/texture"
	"github.com/gogpu/stage/vector"
)

// Node is one drawable of the scene as the frame loop sees it. The scene
// graph computes Transform; the stage only reads it.
//
// A node draws Region as a sprite when set, otherwise Graphics as vector
// shapes. Nodes with neither draw nothing.
type Node struct {
	// Transform is the world transform.
	Transform geom.Matrix

	// Anchor is the sprite origin as a fraction of the region size.
	Anchor geom.Point

	Region   *texture.Region
	Graphics *vector.Graphics

	// Tint is a 0xRRGGBB color multiplied into the node.
	Tint uint32

	// Alpha is the opacity in [0, 1].
	Alpha float64

	Blend   gpucore.BlendMode
	Visible bool
}

// NewSprite returns a visible, untinted node drawing r.
func NewSprite(r *texture.Region) *Node {
	return &Node{
		Transform: geom.Identity(),
		Region:    r,
		Tint:      0xFFFFFF,
		Alpha:     1,
		Visible:   true,
	}
}

// NewShape returns a visible, untinted node drawing g.
func NewShape(g *vector.Graphics) *Node {
	return &Node{
		Transform: geom.Identity(),
		Graphics:  g,
		Tint:      0xFFFFFF,
		Alpha:     1,
		Visible:   true,
	}
}

// drawable reports whether the node produces any pixels.
func (n *Node) drawable() bool {
	return n != nil && n.Visible && n.Alpha > 0 && (n.Region != nil || n.Graphics != nil)
}
