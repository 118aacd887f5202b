// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stage

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/batch"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/texture"
)

// Config holds Stage settings. The zero value of each field selects its
// default.
type Config struct {
	// MaxTextures limits the texture units one sprite draw samples.
	// Default: the driver limit, at most device.MaxTextureUnits.
	MaxTextures int

	// BatchSize is the number of sprites buffered before a flush.
	// Default: batch.DefaultSize.
	BatchSize int

	// GCMode selects when idle textures are evicted. Default: device.GCAuto.
	GCMode device.GCMode

	// GCInterval is the number of frames between collections.
	// Default: device.DefaultGCInterval.
	GCInterval int

	// GCMaxIdle is the number of frames a texture may go undrawn before its
	// GPU copy is evicted. Default: device.DefaultGCMaxIdle.
	GCMaxIdle uint64

	// SVGScale is the rasterization scale of SVG sources. Default: 1.
	SVGScale float64

	// Loader fetches URL sources. Default: none, so only data: URIs load.
	Loader texture.Loader

	// BackgroundColor clears the screen at the start of each frame.
	BackgroundColor gputypes.Color

	// Resolution is device pixels per logical pixel of the screen.
	// Default: 1.
	Resolution float64

	// Width and Height are the screen size in device pixels.
	Width, Height int
}

// Option configures a Stage during creation.
//
// Example:
//
//	s, err := stage.New(drv,
//		stage.WithSize(1280, 720),
//		stage.WithBackgroundColor(gputypes.Color{A: 1}),
//	)
type Option func(*Config)

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:  batch.DefaultSize,
		GCMode:     device.GCAuto,
		GCInterval: device.DefaultGCInterval,
		GCMaxIdle:  device.DefaultGCMaxIdle,
		SVGScale:   1,
		Resolution: 1,
	}
}

// WithMaxTextures limits the texture units per sprite draw.
func WithMaxTextures(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTextures = n
		}
	}
}

// WithBatchSize sets the number of sprites per flush. It is rounded up to a
// power of two.
func WithBatchSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BatchSize = n
		}
	}
}

// WithGCMode selects automatic or manual texture collection.
func WithGCMode(mode device.GCMode) Option {
	return func(c *Config) {
		c.GCMode = mode
	}
}

// WithGCInterval sets the number of frames between automatic collections.
func WithGCInterval(frames int) Option {
	return func(c *Config) {
		if frames > 0 {
			c.GCInterval = frames
		}
	}
}

// WithGCMaxIdle sets how many frames a texture may go undrawn before its
// GPU copy is evicted.
func WithGCMaxIdle(frames uint64) Option {
	return func(c *Config) {
		if frames > 0 {
			c.GCMaxIdle = frames
		}
	}
}

// WithSVGScale sets the rasterization scale of SVG sources.
func WithSVGScale(scale float64) Option {
	return func(c *Config) {
		if scale > 0 {
			c.SVGScale = scale
		}
	}
}

// WithLoader sets the loader for URL sources.
func WithLoader(l texture.Loader) Option {
	return func(c *Config) {
		c.Loader = l
	}
}

// WithBackgroundColor sets the screen clear color.
func WithBackgroundColor(color gputypes.Color) Option {
	return func(c *Config) {
		c.BackgroundColor = color
	}
}

// WithResolution sets the device pixels per logical pixel of the screen.
func WithResolution(resolution float64) Option {
	return func(c *Config) {
		if resolution > 0 {
			c.Resolution = resolution
		}
	}
}

// WithSize sets the screen size in device pixels.
func WithSize(width, height int) Option {
	return func(c *Config) {
		if width > 0 && height > 0 {
			c.Width, c.Height = width, height
		}
	}
}
