// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/stage/geom"
)

// Region is a rectangular frame over a Base, in logical pixels. A region
// created without a frame follows the full size of its base, which may only
// become known once an asynchronous load completes.
type Region struct {
	base  *Base
	frame geom.Rect
	full  bool

	// seen is the base version the cached UVs were computed from.
	seen uint64
	uvs  [8]float32
}

// NewRegion creates a region over frame. The frame is validated against the
// base when the base is Ready.
func NewRegion(base *Base, frame geom.Rect) (*Region, error) {
	r := &Region{base: base}
	if err := r.SetFrame(frame); err != nil {
		return nil, err
	}
	return r, nil
}

// FullRegion creates a region covering the whole base.
func FullRegion(base *Base) *Region {
	return &Region{base: base, full: true}
}

// Base returns the texture the region samples.
func (r *Region) Base() *Base { return r.base }

// SetFrame changes the sampled rectangle.
func (r *Region) SetFrame(frame geom.Rect) error {
	if frame.Empty() {
		return fmt.Errorf("%w: frame %+v", ErrEmptySource, frame)
	}
	if r.base.Ready() && (frame.X < 0 || frame.Y < 0 ||
		frame.Right() > r.base.Width() || frame.Bottom() > r.base.Height()) {
		return fmt.Errorf("%w: frame %+v, base %vx%v", ErrFrameOutOfBounds, frame, r.base.Width(), r.base.Height())
	}
	r.frame = frame
	r.full = false
	r.seen = 0
	return nil
}

// Frame returns the current frame. Full regions track base resizes.
func (r *Region) Frame() geom.Rect {
	if r.full {
		return geom.Rect{W: r.base.Width(), H: r.base.Height()}
	}
	return r.frame
}

// Width returns the frame width.
func (r *Region) Width() float64 { return r.Frame().W }

// Height returns the frame height.
func (r *Region) Height() float64 { return r.Frame().H }

// UVs returns the normalized texture coordinates of the frame corners in
// the order top-left, top-right, bottom-right, bottom-left, as x,y pairs.
// They are recomputed whenever the base changed since the last call.
func (r *Region) UVs() [8]float32 {
	if v := r.base.Version(); v != r.seen {
		r.seen = v
		r.uvs = r.computeUVs()
	}
	return r.uvs
}

func (r *Region) computeUVs() [8]float32 {
	w, h := r.base.Width(), r.base.Height()
	if w == 0 || h == 0 {
		return [8]float32{}
	}
	f := r.Frame()
	x0 := float32(f.X / w)
	y0 := float32(f.Y / h)
	x1 := float32(f.Right() / w)
	y1 := float32(f.Bottom() / h)
	return [8]float32{x0, y0, x1, y0, x1, y1, x0, y1}
}
