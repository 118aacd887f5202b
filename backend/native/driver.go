// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
)

// Name is the registry name of the native backend.
const Name = "native"

// maxUnits caps the texture units one sprite draw samples.
const maxUnits = 16

// Option configures a Driver.
type Option func(*config)

type config struct {
	format   gputypes.TextureFormat
	maxUnits int
}

// WithSurfaceFormat sets the color format of the screen target. The default
// is the provider's surface format, or BGRA8Unorm when headless.
func WithSurfaceFormat(format gputypes.TextureFormat) Option {
	return func(c *config) {
		if format != gputypes.TextureFormatUndefined {
			c.format = format
		}
	}
}

// WithMaxTextureUnits limits the texture units reported by Caps.
func WithMaxTextureUnits(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxUnits = n
		}
	}
}

// Stats reports driver activity.
type Stats struct {
	// Submits is the number of command buffers submitted.
	Submits int

	// Draws is the number of draws encoded.
	Draws int

	// Pipelines is the number of cached render pipelines.
	Pipelines int

	// Textures and Buffers count live driver resources.
	Textures, Buffers int

	// InFlight is the number of submissions whose resources are not yet
	// reclaimed.
	InFlight int
}

// Driver is a gpucore.Driver over a wgpu HAL device.
//
// Binding calls only update driver state. Each DrawIndexed snapshots that
// state, and the snapshots are encoded into render passes when the frame
// ends or when a write would change a resource a pending draw reads.
type Driver struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance // non-nil when the driver opened its own device
	adapter  string
	format   gputypes.TextureFormat
	caps     gpucore.Caps

	destroyed bool
	nextID    uint64

	textures     map[gpucore.TextureID]*texture
	buffers      map[gpucore.BufferID]*buffer
	arrays       map[gpucore.VertexArrayID]*vertexArray
	programs     map[gpucore.ShaderID]*program
	modules      map[moduleKey]*module
	framebuffers map[gpucore.FramebufferID]gpucore.TextureID
	samplers     map[samplerKey]hal.Sampler
	pipelines    *pipelineCache
	placeholder  *texture

	state  bindState
	screen screen
	frame  pending

	retired []submission
	stats   Stats
}

// halProvider is implemented by device providers that share their HAL
// device, such as gogpu.App.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// New creates a driver on the device of a host provider. The provider must
// expose HalDevice and HalQueue, or return HAL objects from Device and
// Queue.
func New(provider gpucontext.DeviceProvider, opts ...Option) (*Driver, error) {
	if provider == nil {
		return nil, ErrNoHALDevice
	}
	var device, queue any = provider.Device(), provider.Queue()
	if hp, ok := provider.(halProvider); ok {
		device, queue = hp.HalDevice(), hp.HalQueue()
	}
	halDevice, ok := device.(hal.Device)
	if !ok || halDevice == nil {
		return nil, fmt.Errorf("%w: device is %T", ErrNoHALDevice, device)
	}
	halQueue, ok := queue.(hal.Queue)
	if !ok || halQueue == nil {
		return nil, fmt.Errorf("%w: queue is %T", ErrNoHALDevice, queue)
	}
	opts = append([]Option{WithSurfaceFormat(provider.SurfaceFormat())}, opts...)
	d, err := NewWithDevice(halDevice, halQueue, opts...)
	if err != nil {
		return nil, err
	}
	d.adapter = provider.AdapterInfo().Name
	logger.Get().Info("native: using shared device", "adapter", d.adapter, "format", d.format)
	return d, nil
}

// NewWithDevice creates a driver on an existing HAL device and queue. The
// caller keeps ownership of both.
func NewWithDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Driver, error) {
	if device == nil || queue == nil {
		return nil, ErrNoHALDevice
	}
	cfg := config{format: gputypes.TextureFormatBGRA8Unorm, maxUnits: maxUnits}
	for _, opt := range opts {
		opt(&cfg)
	}
	limits := gputypes.DefaultLimits()
	units := min(cfg.maxUnits, maxUnits,
		int(limits.MaxSampledTexturesPerShaderStage), int(limits.MaxSamplersPerShaderStage))

	d := &Driver{
		device: device,
		queue:  queue,
		format: cfg.format,
		caps: gpucore.Caps{
			MaxTextureUnits: max(units, 1),
			MaxTextureSize:  int(limits.MaxTextureDimension2D),
		},
		textures:     make(map[gpucore.TextureID]*texture),
		buffers:      make(map[gpucore.BufferID]*buffer),
		arrays:       make(map[gpucore.VertexArrayID]*vertexArray),
		programs:     make(map[gpucore.ShaderID]*program),
		modules:      make(map[moduleKey]*module),
		framebuffers: make(map[gpucore.FramebufferID]gpucore.TextureID),
		samplers:     make(map[samplerKey]hal.Sampler),
		pipelines:    newPipelineCache(device),
	}
	d.state.units = make([]gpucore.TextureID, d.caps.MaxTextureUnits)
	d.frame.reset()

	placeholder, err := d.newTexture(gpucore.TextureDesc{Label: "placeholder", Width: 1, Height: 1})
	if err != nil {
		return nil, fmt.Errorf("native: create placeholder texture: %w", err)
	}
	if err := d.writeTexture(placeholder, make([]byte, 4)); err != nil {
		d.destroyTexture(placeholder)
		return nil, fmt.Errorf("native: write placeholder texture: %w", err)
	}
	d.placeholder = placeholder
	return d, nil
}

// Open creates a standalone driver on the first suitable adapter of a HAL
// backend. Discrete and integrated GPUs are preferred.
func Open(variant gputypes.Backend, opts ...Option) (*Driver, error) {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, variant)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	d, err := NewWithDevice(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.adapter = selected.Info.Name
	logger.Get().Info("native: opened device", "backend", variant, "adapter", d.adapter)
	return d, nil
}

// Name implements gpucore.Driver.
func (d *Driver) Name() string { return Name }

// Caps implements gpucore.Driver.
func (d *Driver) Caps() gpucore.Caps { return d.caps }

// Adapter returns the adapter name, if known.
func (d *Driver) Adapter() string { return d.adapter }

// Format returns the screen color format.
func (d *Driver) Format() gputypes.TextureFormat { return d.format }

// Device returns the HAL device.
func (d *Driver) Device() hal.Device { return d.device }

// Stats returns driver activity counters.
func (d *Driver) Stats() Stats {
	s := d.stats
	s.Pipelines = d.pipelines.Len()
	s.Textures = len(d.textures)
	s.Buffers = len(d.buffers)
	s.InFlight = len(d.retired)
	return s
}

// SetSurfaceView directs the screen target of the current frame into a
// host-provided view, such as an acquired swapchain texture. Without one
// the screen renders into a driver-owned texture.
func (d *Driver) SetSurfaceView(view hal.TextureView, width, height int) {
	d.screen.external = view
	d.screen.width, d.screen.height = width, height
}

// ScreenTexture returns the driver-owned screen texture, or nil before the
// first headless frame.
func (d *Driver) ScreenTexture() hal.Texture { return d.screen.tex }

// EndFrame implements gpucore.Driver.
func (d *Driver) EndFrame() error {
	if d.destroyed {
		return ErrDestroyed
	}
	err := d.flush()
	d.screen.external = nil
	return err
}

// Destroy implements gpucore.Driver. Pending draws are dropped. A device
// opened by Open is destroyed with the driver.
func (d *Driver) Destroy() {
	if d.destroyed {
		return
	}
	d.frame.reset()
	if err := d.device.WaitIdle(); err != nil {
		logger.Get().Warn("native: wait idle", "err", err)
	}
	for _, s := range d.retired {
		d.release(s)
	}
	d.retired = nil

	for id := range d.arrays {
		delete(d.arrays, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.raw)
		delete(d.buffers, id)
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	clear(d.framebuffers)
	clear(d.programs)
	for key, m := range d.modules {
		d.destroyModule(m)
		delete(d.modules, key)
	}
	for key, s := range d.samplers {
		d.device.DestroySampler(s)
		delete(d.samplers, key)
	}
	d.destroyTexture(d.placeholder)
	d.screen.destroy(d.device)

	if d.instance != nil {
		d.device.Destroy()
		d.instance.Destroy()
		d.instance = nil
	}
	d.destroyed = true
}

// compile-time interface check
var _ gpucore.Driver = (*Driver)(nil)
