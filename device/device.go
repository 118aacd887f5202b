// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/event"
	"github.com/gogpu/stage/internal/logger"
	"github.com/gogpu/stage/texture"
)

// MaxTextureUnits is the most texture units a device ever uses, whatever
// the driver reports.
const MaxTextureUnits = 16

// Errors returned by the device.
var (
	// ErrNoDriver is returned by New when the driver is nil.
	ErrNoDriver = errors.New("device: nil driver")

	// ErrStaleVertexArray is returned when binding a vertex array that has
	// not been uploaded in the current epoch.
	ErrStaleVertexArray = errors.New("device: vertex array not uploaded in current epoch")
)

// ObjectRenderer is a renderer the device can activate. Exactly one is
// active at a time.
type ObjectRenderer interface {
	// Start is called when the renderer becomes active.
	Start()

	// Flush draws everything queued so far.
	Flush() error

	// Stop is called when another renderer takes over. It must flush
	// synchronously.
	Stop() error
}

// Config holds device settings.
type Config struct {
	// MaxTextures limits the texture units used per draw. Zero means the
	// driver limit. The value is clamped to [1, MaxTextureUnits].
	MaxTextures int

	// GCMode selects when the texture garbage collector runs.
	GCMode GCMode

	// GCInterval is the number of frames between automatic collections.
	GCInterval int

	// GCMaxIdle is the number of frames a texture may go untouched before
	// its GPU copy is evicted.
	GCMaxIdle uint64
}

// DefaultConfig returns the default device settings.
func DefaultConfig() Config {
	return Config{
		GCMode:     GCAuto,
		GCInterval: DefaultGCInterval,
		GCMaxIdle:  DefaultGCMaxIdle,
	}
}

// Device is the single owner of a rendering context and its binding state.
type Device struct {
	drv   gpucore.Driver
	epoch uint64
	lost  bool
	tick  uint64

	// units is the bound texture table; empty holds the placeholder for
	// each unit and bound the driver-side ID currently on each unit.
	units    []*texture.Base
	empty    []*texture.Base
	bound    []gpucore.TextureID
	nextUnit int

	renderer  ObjectRenderer
	switching bool

	screen  *RenderTarget
	target  *RenderTarget
	targets int

	shaders map[gpucore.ShaderKind]*Shader
	shader  *Shader
	vao     *VertexArray
	blend   gpucore.BlendMode
	blended bool

	// managed maps textures with a current-epoch handle to their dispose
	// listener.
	managed map[*texture.Base]event.ID

	gc    *TextureGC
	stats Stats
}

// New creates a device on a driver.
func New(drv gpucore.Driver, cfg Config) (*Device, error) {
	if drv == nil {
		return nil, ErrNoDriver
	}
	n := unitCount(cfg.MaxTextures, drv.Caps().MaxTextureUnits)
	d := &Device{
		drv:     drv,
		epoch:   1,
		units:   make([]*texture.Base, n),
		empty:   make([]*texture.Base, n),
		bound:   make([]gpucore.TextureID, n),
		shaders: make(map[gpucore.ShaderKind]*Shader),
		managed: make(map[*texture.Base]event.ID),
	}
	for i := range d.units {
		d.empty[i] = texture.NewBase(fmt.Sprintf("empty_%d", i))
		d.units[i] = d.empty[i]
	}
	d.screen = &RenderTarget{dev: d, resolution: 1}
	d.gc = newTextureGC(d, cfg)
	logger.Get().Info("device: created", "driver", drv.Name(), "units", n)
	return d, nil
}

func unitCount(requested, driverMax int) int {
	n := driverMax
	if requested > 0 && (n <= 0 || requested < n) {
		n = requested
	}
	return max(1, min(n, MaxTextureUnits))
}

// Driver returns the driver the device issues calls to.
func (d *Device) Driver() gpucore.Driver { return d.drv }

// Epoch returns the current context epoch. It starts at 1 and increases on
// every RestoreContext.
func (d *Device) Epoch() uint64 { return d.epoch }

// Lost reports whether the context is lost.
func (d *Device) Lost() bool { return d.lost }

// Tick returns the current frame tick.
func (d *Device) Tick() uint64 { return d.tick }

// MaxTextures returns the number of texture units in the unit table.
func (d *Device) MaxTextures() int { return len(d.units) }

// Unit returns the texture bound to a unit. An unused unit holds its empty
// placeholder.
func (d *Device) Unit(unit int) *texture.Base { return d.units[unit] }

// Empty returns the placeholder texture of a unit.
func (d *Device) Empty(unit int) *texture.Base { return d.empty[unit] }

// IsPlaceholder reports whether tex is one of the empty unit placeholders.
func (d *Device) IsPlaceholder(tex *texture.Base) bool {
	for _, e := range d.empty {
		if e == tex {
			return true
		}
	}
	return false
}

// IsBound reports whether tex occupies any texture unit.
func (d *Device) IsBound(tex *texture.Base) bool {
	for _, t := range d.units {
		if t == tex {
			return true
		}
	}
	return false
}

// GC returns the texture garbage collector.
func (d *Device) GC() *TextureGC { return d.gc }

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	s := d.stats
	s.Epoch = d.epoch
	s.Tick = d.tick
	s.ResidentTextures = len(d.managed)
	return s
}

// SetObjectRenderer makes r the active renderer. The previous renderer is
// stopped, which flushes it, before r starts. Setting the active renderer
// again is a no-op.
//
// Calling SetObjectRenderer from inside Start or Stop panics.
func (d *Device) SetObjectRenderer(r ObjectRenderer) error {
	if r == d.renderer {
		return nil
	}
	if d.switching {
		panic("device: re-entrant SetObjectRenderer")
	}
	d.switching = true
	defer func() { d.switching = false }()

	var err error
	if d.renderer != nil {
		err = d.renderer.Stop()
	}
	d.renderer = r
	if r != nil {
		r.Start()
	}
	return err
}

// ObjectRenderer returns the active renderer, or nil.
func (d *Device) ObjectRenderer() ObjectRenderer { return d.renderer }

// FlushRenderer flushes the active renderer without switching.
func (d *Device) FlushRenderer() error {
	if d.renderer == nil {
		return nil
	}
	return d.renderer.Flush()
}

// SetBlendMode selects the blend mode for following draws.
func (d *Device) SetBlendMode(mode gpucore.BlendMode) {
	if d.lost || (d.blended && d.blend == mode) {
		return
	}
	d.drv.SetBlendMode(mode)
	d.blend = mode
	d.blended = true
}

// DrawIndexed issues an indexed draw with the current binding state. Draws
// are dropped while the context is lost.
func (d *Device) DrawIndexed(mode gpucore.DrawMode, first, count int) {
	if count <= 0 {
		return
	}
	if d.lost {
		d.stats.DroppedDraws++
		return
	}
	d.drv.DrawIndexed(mode, first, count)
	d.stats.DrawCalls++
}

// Clear fills the bound render target.
func (d *Device) Clear(c gputypes.Color) {
	if d.lost {
		return
	}
	d.drv.Clear(c)
}

// BeginFrame advances the frame tick.
func (d *Device) BeginFrame() {
	d.tick++
	d.stats.DrawCalls = 0
}

// EndFrame flushes the active renderer, runs the garbage collector on its
// cadence and submits the frame.
func (d *Device) EndFrame() error {
	err := d.FlushRenderer()
	if n := d.gc.Update(); n > 0 {
		logger.Get().Debug("device: evicted textures", "count", n, "tick", d.tick)
	}
	if d.lost {
		return err
	}
	if ferr := d.drv.EndFrame(); ferr != nil {
		err = errors.Join(err, fmt.Errorf("device: end frame: %w", ferr))
	}
	logger.Get().Debug("device: frame", "tick", d.tick, "draws", d.stats.DrawCalls)
	return err
}

// LoseContext makes the device inert until RestoreContext.
func (d *Device) LoseContext() {
	if d.lost {
		return
	}
	d.lost = true
	logger.Get().Info("device: context lost", "epoch", d.epoch)
}

// RestoreContext starts a new epoch, optionally on a new driver. Every GPU
// handle from earlier epochs is orphaned without being destroyed, binding
// state is reset, and objects are recreated lazily on their next use.
func (d *Device) RestoreContext(drv gpucore.Driver) {
	if drv != nil {
		d.drv = drv
	}
	d.epoch++
	d.lost = false

	for tex, id := range d.managed {
		tex.DropStaleHandles(d.epoch)
		tex.Events().Off(id)
	}
	clear(d.managed)
	d.stats.ResidentBytes = 0

	for i := range d.units {
		d.units[i] = d.empty[i]
		d.bound[i] = gpucore.InvalidID
	}
	d.nextUnit = 0
	d.target = nil
	d.shader = nil
	d.vao = nil
	d.blended = false

	logger.Get().Info("device: context restored", "epoch", d.epoch, "driver", d.drv.Name())
}

// Destroy stops the active renderer and releases every GPU object the
// device created in the current epoch. The driver itself is not destroyed.
func (d *Device) Destroy() error {
	err := d.SetObjectRenderer(nil)
	for tex := range d.managed {
		d.ReleaseTexture(tex)
	}
	for _, s := range d.shaders {
		s.release()
	}
	clear(d.shaders)
	d.shader = nil
	d.vao = nil
	d.target = nil
	return err
}
