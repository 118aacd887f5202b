// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"

	"github.com/gogpu/stage/internal/logger"
	"github.com/gogpu/stage/texture"
)

// Default garbage collector settings.
const (
	// DefaultGCInterval is the default number of frames between collections.
	DefaultGCInterval = 600

	// DefaultGCMaxIdle is the default number of frames a texture may go
	// untouched before eviction.
	DefaultGCMaxIdle = 3600
)

// GCMode selects when the texture garbage collector runs.
type GCMode uint8

// Garbage collector modes.
const (
	// GCAuto collects every Interval frames.
	GCAuto GCMode = iota
	// GCManual collects only on Run.
	GCManual
)

// String returns the mode name.
func (m GCMode) String() string {
	switch m {
	case GCAuto:
		return "Auto"
	case GCManual:
		return "Manual"
	default:
		return fmt.Sprintf("GCMode(%d)", int(m))
	}
}

// TextureGC evicts the GPU copies of textures that went unused for too
// long. The texture.Base and its cache entry survive an eviction, so a later
// bind uploads the pixels again.
//
// Pinned textures are never evicted. A texture left in a unit by an earlier
// frame is not in use and is unbound when evicted. Run flushes the active
// renderer first, so quads queued in the current frame touch their
// textures before any is judged idle.
type TextureGC struct {
	// Mode selects automatic or manual collection.
	Mode GCMode

	// Interval is the number of frames between automatic collections.
	Interval int

	// MaxIdle is the number of ticks a texture may go untouched.
	MaxIdle uint64

	dev   *Device
	count int
}

func newTextureGC(d *Device, cfg Config) *TextureGC {
	gc := &TextureGC{
		Mode:     cfg.GCMode,
		Interval: cfg.GCInterval,
		MaxIdle:  cfg.GCMaxIdle,
		dev:      d,
	}
	if gc.Interval <= 0 {
		gc.Interval = DefaultGCInterval
	}
	if gc.MaxIdle == 0 {
		gc.MaxIdle = DefaultGCMaxIdle
	}
	return gc
}

// Update is called once per frame and collects every Interval frames in
// GCAuto mode. It returns the number of evicted textures.
func (gc *TextureGC) Update() int {
	if gc.Mode != GCAuto {
		return 0
	}
	gc.count++
	if gc.count < gc.Interval {
		return 0
	}
	gc.count = 0
	return gc.Run()
}

// Run evicts every idle texture now and returns how many were evicted.
func (gc *TextureGC) Run() int {
	d := gc.dev
	if d.lost {
		return 0
	}
	if err := d.FlushRenderer(); err != nil {
		logger.Get().Warn("device: gc flush", "err", err)
	}
	var idle []*texture.Base
	for tex := range d.managed {
		if gc.evictable(tex) {
			idle = append(idle, tex)
		}
	}
	for _, tex := range idle {
		logger.Get().Debug("device: gc evict", "key", tex.Key(), "touched", tex.Touched(), "tick", d.tick)
		d.ReleaseTexture(tex)
	}
	d.stats.Evictions += len(idle)
	return len(idle)
}

func (gc *TextureGC) evictable(tex *texture.Base) bool {
	d := gc.dev
	if tex.Pinned() {
		return false
	}
	if _, ok := tex.Handle(d.epoch); !ok {
		return false
	}
	touched := tex.Touched()
	return touched < d.tick && d.tick-touched > gc.MaxIdle
}
