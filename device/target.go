// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/texture"
)

// RenderTarget is the screen or an offscreen texture that draws land in.
type RenderTarget struct {
	dev *Device

	// tex is nil for the screen.
	tex *texture.Base

	width, height int
	resolution    float64
	projection    geom.Matrix

	epoch uint64
	fb    gpucore.FramebufferID
	fbTex gpucore.TextureID
}

// Screen returns the screen render target.
func (d *Device) Screen() *RenderTarget { return d.screen }

// CurrentTarget returns the bound render target, or nil.
func (d *Device) CurrentTarget() *RenderTarget { return d.target }

// NewRenderTarget creates an offscreen target of the given device-pixel
// size. Its texture is pinned and can be drawn like any other texture.
func (d *Device) NewRenderTarget(width, height int, resolution float64) (*RenderTarget, error) {
	d.targets++
	tex, err := texture.NewRenderBase(fmt.Sprintf("target_%d", d.targets), width, height, resolution)
	if err != nil {
		return nil, err
	}
	rt := &RenderTarget{dev: d, tex: tex, resolution: tex.Resolution()}
	rt.setSize(width, height)
	return rt, nil
}

// Texture returns the backing texture, or nil for the screen.
func (rt *RenderTarget) Texture() *texture.Base { return rt.tex }

// IsScreen reports whether rt is the screen.
func (rt *RenderTarget) IsScreen() bool { return rt.tex == nil }

// Size returns the device-pixel size.
func (rt *RenderTarget) Size() (width, height int) { return rt.width, rt.height }

// Resolution returns the device pixels per logical pixel.
func (rt *RenderTarget) Resolution() float64 { return rt.resolution }

// Projection maps logical coordinates to clip space.
func (rt *RenderTarget) Projection() geom.Matrix { return rt.projection }

// SetResolution changes the device pixels per logical pixel of the screen.
func (rt *RenderTarget) SetResolution(resolution float64) {
	if resolution <= 0 || !rt.IsScreen() {
		return
	}
	rt.resolution = resolution
	rt.setSize(rt.width, rt.height)
	rt.rebind()
}

// Resize changes the device-pixel size. Offscreen targets keep the
// overlapping pixels of their texture until the next draw.
func (rt *RenderTarget) Resize(width, height int) error {
	if width == rt.width && height == rt.height {
		return nil
	}
	if rt.tex != nil {
		if err := rt.tex.Resize(width, height); err != nil {
			return err
		}
	}
	rt.setSize(width, height)
	rt.rebind()
	return nil
}

func (rt *RenderTarget) setSize(width, height int) {
	rt.width, rt.height = width, height
	rt.projection = geom.Ortho(float64(width)/rt.resolution, float64(height)/rt.resolution, false)
}

// rebind forces the next BindRenderTarget of rt to reach the driver.
func (rt *RenderTarget) rebind() {
	if rt.dev.target == rt {
		rt.dev.target = nil
	}
}

// framebuffer returns the current-epoch framebuffer, creating it after a
// restore or when the texture was reallocated.
func (rt *RenderTarget) framebuffer() (gpucore.FramebufferID, error) {
	d := rt.dev
	h, err := d.syncTexture(rt.tex)
	if err != nil {
		return gpucore.InvalidID, err
	}
	current := rt.fb != gpucore.InvalidID && rt.epoch == d.epoch
	if current && rt.fbTex == h.ID {
		return rt.fb, nil
	}
	if current {
		d.drv.DestroyFramebuffer(rt.fb)
	}
	fb, err := d.drv.CreateFramebuffer(h.ID)
	if err != nil {
		rt.fb = gpucore.InvalidID
		return gpucore.InvalidID, fmt.Errorf("device: create framebuffer: %w", err)
	}
	rt.fb, rt.fbTex, rt.epoch = fb, h.ID, d.epoch
	return fb, nil
}

// Destroy frees the framebuffer and the backing texture. Destroying the
// screen is a no-op.
func (rt *RenderTarget) Destroy() {
	if rt.tex == nil {
		return
	}
	d := rt.dev
	if d.target == rt {
		d.target = nil
	}
	if rt.fb != gpucore.InvalidID && rt.epoch == d.epoch && !d.lost {
		d.drv.DestroyFramebuffer(rt.fb)
	}
	rt.fb = gpucore.InvalidID
	rt.tex.Destroy()
}

// BindRenderTarget makes rt the destination of following draws, sets the
// viewport to its size and loads its projection into the bound shader.
// Binding the active target is a no-op.
func (d *Device) BindRenderTarget(rt *RenderTarget) error {
	if d.lost || d.target == rt {
		return nil
	}
	fb := gpucore.FramebufferID(gpucore.InvalidID)
	if rt.tex != nil {
		var err error
		if fb, err = rt.framebuffer(); err != nil {
			return err
		}
	}
	d.drv.BindFramebuffer(fb)
	d.drv.Viewport(0, 0, rt.width, rt.height)
	d.target = rt
	if d.shader != nil {
		u := rt.projection.Uniform()
		d.shader.SetUniform(gpucore.UniformProjection, u[:])
	}
	return nil
}
