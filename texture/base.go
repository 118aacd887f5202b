// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"
	"image"
	"math/bits"

	"golang.org/x/image/draw"

	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/event"
)

// Resource is the capability set shared by GPU-backed resources: identity,
// load state, notifications and disposal.
type Resource interface {
	// Key returns the cache key.
	Key() string
	// State returns the load state.
	State() State
	// Events returns the emitter delivering update, loaded, error and
	// dispose notifications.
	Events() *event.Emitter[EventKind, Event]
	// Destroy releases the resource permanently.
	Destroy()
}

// Handle is the GPU copy of a Base in one context epoch.
type Handle struct {
	ID gpucore.TextureID
	// Version is the Base version the pixels were uploaded from.
	Version uint64
	// Desc is the descriptor the GPU texture was allocated with.
	Desc gpucore.TextureDesc
}

// Base is one GPU-backed image: the concrete Resource.
type Base struct {
	key   string
	cache *Cache

	canvas     *image.RGBA
	resolution float64
	state      State
	err        error

	scale gpucore.ScaleMode
	wrap  gpucore.WrapMode

	pinned       bool
	renderTarget bool
	touched      uint64
	version      uint64
	handles      map[uint64]Handle

	events event.Emitter[EventKind, Event]
}

// NewBase creates an uncached, Empty texture. Most callers use Cache.Acquire.
func NewBase(key string) *Base {
	return &Base{key: key, resolution: 1, handles: make(map[uint64]Handle)}
}

// NewRenderBase creates a Ready texture of the given device-pixel size whose
// pixels are produced by the GPU. Render-target textures are pinned so the
// garbage collector never evicts them.
func NewRenderBase(key string, width, height int, resolution float64) (*Base, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: render texture %dx%d", ErrEmptySource, width, height)
	}
	b := NewBase(key)
	b.pinned = true
	b.renderTarget = true
	if resolution > 0 {
		b.resolution = resolution
	}
	b.setCanvas(image.NewRGBA(image.Rect(0, 0, width, height)))
	return b, nil
}

// Key implements Resource.
func (b *Base) Key() string { return b.key }

// State implements Resource.
func (b *Base) State() State { return b.state }

// Err returns the load error of an Errored texture.
func (b *Base) Err() error { return b.err }

// Events implements Resource.
func (b *Base) Events() *event.Emitter[EventKind, Event] { return &b.events }

// Ready reports whether the texture can be drawn.
func (b *Base) Ready() bool { return b.state == StateReady }

// Width returns the logical width (device pixels divided by resolution).
func (b *Base) Width() float64 { return float64(b.RealWidth()) / b.resolution }

// Height returns the logical height.
func (b *Base) Height() float64 { return float64(b.RealHeight()) / b.resolution }

// RealWidth returns the width in device pixels.
func (b *Base) RealWidth() int {
	if b.canvas == nil {
		return 0
	}
	return b.canvas.Rect.Dx()
}

// RealHeight returns the height in device pixels.
func (b *Base) RealHeight() int {
	if b.canvas == nil {
		return 0
	}
	return b.canvas.Rect.Dy()
}

// Resolution returns the device pixels per logical pixel.
func (b *Base) Resolution() float64 { return b.resolution }

// IsPowerOfTwo reports whether both device-pixel dimensions are powers of two.
func (b *Base) IsPowerOfTwo() bool {
	w, h := b.RealWidth(), b.RealHeight()
	return w > 0 && h > 0 && bits.OnesCount(uint(w)) == 1 && bits.OnesCount(uint(h)) == 1
}

// ScaleMode returns the sampling filter.
func (b *Base) ScaleMode() gpucore.ScaleMode { return b.scale }

// SetScaleMode changes the sampling filter; the next bind re-uploads.
func (b *Base) SetScaleMode(m gpucore.ScaleMode) {
	if b.scale != m {
		b.scale = m
		b.Update()
	}
}

// WrapMode returns the effective addressing mode. Repeat is only honored for
// power-of-two textures.
func (b *Base) WrapMode() gpucore.WrapMode {
	if b.wrap == gpucore.WrapRepeat && !b.IsPowerOfTwo() {
		return gpucore.WrapClamp
	}
	return b.wrap
}

// SetWrapMode requests an addressing mode; the next bind re-uploads.
func (b *Base) SetWrapMode(m gpucore.WrapMode) {
	if b.wrap != m {
		b.wrap = m
		b.Update()
	}
}

// IsRenderTarget reports whether the texture backs a framebuffer.
func (b *Base) IsRenderTarget() bool { return b.renderTarget }

// Pinned reports whether the garbage collector must skip this texture.
func (b *Base) Pinned() bool { return b.pinned }

// SetPinned protects the texture from garbage collection.
func (b *Base) SetPinned(pinned bool) { b.pinned = pinned }

// Touch records the frame tick the texture was last drawn in. It is the
// only liveness signal the garbage collector reads.
func (b *Base) Touch(tick uint64) { b.touched = tick }

// Touched returns the last recorded frame tick.
func (b *Base) Touched() uint64 { return b.touched }

// Version increases every time pixels, size or sampling change.
func (b *Base) Version() uint64 { return b.version }

// Desc returns the GPU texture descriptor for the current pixels.
func (b *Base) Desc() gpucore.TextureDesc {
	return gpucore.TextureDesc{
		Label:        b.key,
		Width:        b.RealWidth(),
		Height:       b.RealHeight(),
		Scale:        b.scale,
		Wrap:         b.WrapMode(),
		RenderTarget: b.renderTarget,
	}
}

// Pixels returns tightly packed premultiplied RGBA8 pixels.
func (b *Base) Pixels() []byte {
	c := b.canvas
	if c == nil {
		return nil
	}
	w, h := c.Rect.Dx(), c.Rect.Dy()
	if c.Stride == w*4 && c.Rect.Min == (image.Point{}) {
		return c.Pix[:w*h*4]
	}
	out := make([]byte, 0, w*h*4)
	for y := c.Rect.Min.Y; y < c.Rect.Max.Y; y++ {
		off := c.PixOffset(c.Rect.Min.X, y)
		out = append(out, c.Pix[off:off+w*4]...)
	}
	return out
}

// Canvas returns the backing RGBA image. Callers that draw into it must
// call Update afterwards.
func (b *Base) Canvas() *image.RGBA { return b.canvas }

// Handle returns the GPU handle for an epoch.
func (b *Base) Handle(epoch uint64) (Handle, bool) {
	h, ok := b.handles[epoch]
	return h, ok
}

// SetHandle stores the GPU handle for an epoch.
func (b *Base) SetHandle(epoch uint64, h Handle) {
	b.handles[epoch] = h
}

// DropHandle forgets and returns the handle for an epoch. The caller owns
// destroying it.
func (b *Base) DropHandle(epoch uint64) (Handle, bool) {
	h, ok := b.handles[epoch]
	if ok {
		delete(b.handles, epoch)
	}
	return h, ok
}

// DropStaleHandles forgets handles of every epoch except current. The GPU
// objects they named died with their context and are not destroyed.
func (b *Base) DropStaleHandles(current uint64) int {
	n := 0
	for epoch := range b.handles {
		if epoch != current {
			delete(b.handles, epoch)
			n++
		}
	}
	return n
}

// Update signals that pixels changed. The next bind re-uploads and
// dependent regions recompute their frames.
func (b *Base) Update() {
	if b.state == StateDestroyed {
		return
	}
	b.version++
	b.events.Emit(EventUpdate, Event{Kind: EventUpdate, Base: b})
}

// Resize changes the device-pixel size, keeping the overlapping pixels.
func (b *Base) Resize(width, height int) error {
	if b.state == StateDestroyed {
		return ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: resize to %dx%d", ErrEmptySource, width, height)
	}
	if width == b.RealWidth() && height == b.RealHeight() {
		return nil
	}
	next := image.NewRGBA(image.Rect(0, 0, width, height))
	if b.canvas != nil {
		draw.Draw(next, next.Bounds(), b.canvas, b.canvas.Rect.Min, draw.Src)
	}
	b.canvas = next
	if b.state == StateEmpty {
		b.state = StateReady
	}
	b.Update()
	return nil
}

// Destroy removes the texture from its cache, notifies listeners so the
// device releases the GPU copy, and marks the texture Destroyed.
func (b *Base) Destroy() {
	if b.state == StateDestroyed {
		return
	}
	if b.cache != nil {
		b.cache.forget(b)
	}
	b.state = StateDestroyed
	b.events.Emit(EventDispose, Event{Kind: EventDispose, Base: b})
	b.events.Reset()
	b.canvas = nil
}

// setCanvas installs new pixels and makes the texture Ready.
func (b *Base) setCanvas(c *image.RGBA) {
	b.canvas = c
	b.state = StateReady
	b.err = nil
	b.version++
}

// finishLoad applies an asynchronous load result. Results for destroyed
// textures are discarded.
func (b *Base) finishLoad(img *image.RGBA, factor float64, err error) bool {
	if b.state == StateDestroyed {
		return false
	}
	if err != nil {
		b.state = StateErrored
		b.err = err
		b.events.Emit(EventError, Event{Kind: EventError, Base: b, Err: err})
		return true
	}
	if factor > 0 {
		b.resolution *= factor
	}
	b.setCanvas(img)
	b.events.Emit(EventLoaded, Event{Kind: EventLoaded, Base: b})
	b.events.Emit(EventUpdate, Event{Kind: EventUpdate, Base: b})
	return true
}

// compile-time interface check
var _ Resource = (*Base)(nil)
