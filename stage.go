// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stage

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/gogpu/stage/batch"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/event"
	"github.com/gogpu/stage/internal/logger"
	"github.com/gogpu/stage/texture"
	"github.com/gogpu/stage/vector"
)

// ErrRendering is returned by calls that cannot run while a frame renders,
// such as a RenderFrame from inside a frame event listener.
var ErrRendering = errors.New("stage: frame in progress")

// Stage renders a scene each frame through a graphics device, batching
// sprites and vector shapes into as few draws as painter's order allows.
//
// A Stage is not safe for concurrent use. Every method must be called from
// the goroutine that renders frames.
type Stage struct {
	cfg     Config
	dev     *device.Device
	cache   *texture.Cache
	sprites *batch.Batcher
	shapes  *vector.Renderer

	events    event.Emitter[EventKind, FrameEvent]
	invalid   bool
	rendering bool
}

// New creates a stage drawing through drv. The driver stays owned by the
// caller and must outlive the stage.
func New(drv gpucore.Driver, opts ...Option) (*Stage, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	dev, err := device.New(drv, device.Config{
		MaxTextures: cfg.MaxTextures,
		GCMode:      cfg.GCMode,
		GCInterval:  cfg.GCInterval,
		GCMaxIdle:   cfg.GCMaxIdle,
	})
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	cacheOpts := []texture.CacheOption{
		texture.WithSVGScale(cfg.SVGScale),
		texture.WithMaxSize(drv.Caps().MaxTextureSize),
	}
	if cfg.Loader != nil {
		cacheOpts = append(cacheOpts, texture.WithLoader(cfg.Loader))
	}

	s := &Stage{
		cfg:     cfg,
		dev:     dev,
		cache:   texture.NewCache(cacheOpts...),
		sprites: batch.New(dev, batch.Config{Size: cfg.BatchSize}),
		shapes:  vector.NewRenderer(dev),
	}
	screen := dev.Screen()
	screen.SetResolution(cfg.Resolution)
	if cfg.Width > 0 && cfg.Height > 0 {
		if err := screen.Resize(cfg.Width, cfg.Height); err != nil {
			return nil, fmt.Errorf("stage: %w", err)
		}
	}
	logger.Get().Info("stage: created",
		"driver", drv.Name(), "units", dev.MaxTextures(), "batch", s.sprites.Size(),
		"width", cfg.Width, "height", cfg.Height)
	return s, nil
}

// Config returns the settings the stage was created with.
func (s *Stage) Config() Config { return s.cfg }

// Device returns the graphics device.
func (s *Stage) Device() *device.Device { return s.dev }

// Textures returns the texture cache.
func (s *Stage) Textures() *texture.Cache { return s.cache }

// Sprites returns the sprite batcher.
func (s *Stage) Sprites() *batch.Batcher { return s.sprites }

// Shapes returns the vector renderer.
func (s *Stage) Shapes() *vector.Renderer { return s.shapes }

// Acquire returns the texture for src from the stage's cache.
func (s *Stage) Acquire(ctx context.Context, src texture.Source, opts texture.Options) (*texture.Base, error) {
	return s.cache.Acquire(ctx, src, opts)
}

// Resize changes the screen size in device pixels.
func (s *Stage) Resize(width, height int) error {
	if err := s.dev.Screen().Resize(width, height); err != nil {
		return fmt.Errorf("stage: resize: %w", err)
	}
	s.cfg.Width, s.cfg.Height = width, height
	return nil
}

// SetResolution changes the device pixels per logical pixel of the screen.
func (s *Stage) SetResolution(resolution float64) {
	s.dev.Screen().SetResolution(resolution)
	s.cfg.Resolution = s.dev.Screen().Resolution()
}

// On registers fn for a frame event and returns an ID usable with Off.
func (s *Stage) On(kind EventKind, fn func(FrameEvent)) ListenerID {
	return s.events.On(kind, fn)
}

// Off removes a listener registered with On. It reports whether one was
// found.
func (s *Stage) Off(id ListenerID) bool {
	return s.events.Off(id)
}

// Invalidate requests that EventInvalidate fire before the next frame.
// Repeated calls before that frame fire it once.
func (s *Stage) Invalidate() {
	s.invalid = true
}

// RenderFrame draws nodes in order into the screen.
//
// A frame applies finished texture loads, emits EventInvalidate when
// requested and EventEnterFrame, clears the screen, draws every visible
// node, flushes and submits the device frame, then emits EventExitFrame.
// Errors from individual nodes do not stop the frame; they are joined into
// the returned error. A cancelled context stops drawing further nodes, but
// the frame is still submitted.
func (s *Stage) RenderFrame(ctx context.Context, nodes iter.Seq[*Node]) error {
	if s.rendering {
		return ErrRendering
	}
	s.rendering = true
	defer func() { s.rendering = false }()

	if n := s.cache.Poll(); n > 0 {
		logger.Get().Debug("stage: applied texture loads", "count", n)
	}
	d := s.dev
	d.BeginFrame()
	tick := d.Tick()

	if s.invalid {
		s.invalid = false
		s.events.Emit(EventInvalidate, FrameEvent{Kind: EventInvalidate, Tick: tick})
	}
	s.events.Emit(EventEnterFrame, FrameEvent{Kind: EventEnterFrame, Tick: tick})

	var errs []error
	if err := d.BindRenderTarget(d.Screen()); err != nil {
		errs = append(errs, fmt.Errorf("stage: bind screen: %w", err))
	}
	d.Clear(s.cfg.BackgroundColor)

	drawn := 0
	if nodes != nil {
		for n := range nodes {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			if !n.drawable() {
				continue
			}
			if err := s.draw(n); err != nil {
				errs = append(errs, err)
				continue
			}
			drawn++
		}
	}

	if err := d.EndFrame(); err != nil {
		errs = append(errs, err)
	}
	s.events.Emit(EventExitFrame, FrameEvent{Kind: EventExitFrame, Tick: tick, Nodes: drawn})
	return errors.Join(errs...)
}

// draw hands one node to the renderer for its kind, switching renderers
// when the kind changes.
func (s *Stage) draw(n *Node) error {
	if n.Region != nil {
		if err := s.dev.SetObjectRenderer(s.sprites); err != nil {
			return err
		}
		var q batch.Quad
		q.SetRegion(n.Region, n.Transform, n.Anchor)
		q.Tint = gpucore.PackColor(n.Tint, n.Alpha)
		q.Blend = n.Blend
		return s.sprites.Render(&q)
	}
	if err := s.dev.SetObjectRenderer(s.shapes); err != nil {
		return err
	}
	err := s.shapes.Render(n.Graphics, n.Transform, n.Tint, n.Alpha, n.Blend)
	if errors.Is(err, vector.ErrEmptyGraphics) {
		return nil
	}
	return err
}

// LoseContext makes the stage inert until RestoreContext. Frames still run
// their events but issue no draws.
func (s *Stage) LoseContext() {
	s.dev.LoseContext()
}

// RestoreContext resumes rendering, on drv when it is not nil. GPU objects
// are recreated lazily as the following frames need them.
func (s *Stage) RestoreContext(drv gpucore.Driver) {
	s.dev.RestoreContext(drv)
}

// Destroy releases every GPU object the stage created and destroys the
// cached textures. The driver is not destroyed.
func (s *Stage) Destroy() error {
	err := s.dev.SetObjectRenderer(nil)
	s.sprites.Destroy()
	s.shapes.Destroy()
	if derr := s.dev.Destroy(); derr != nil {
		err = errors.Join(err, derr)
	}
	s.cache.Destroy()
	s.events.Reset()
	return err
}
