// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package stage is a retained-mode 2D display engine core.
//
// A Stage owns a graphics device, a texture cache, a sprite batcher and a
// vector renderer. Each call to RenderFrame draws a sequence of nodes in
// painter's order, batching consecutive sprites into multi-texture draws
// and drawing vector shapes from cached tessellations.
//
// # Quick Start
//
//	drv, err := backend.Default(provider)
//	if err != nil {
//		log.Fatal(err)
//	}
//	s, err := stage.New(drv, stage.WithSize(1280, 720))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Destroy()
//
//	tex, _ := s.Acquire(ctx, texture.URLSource{URL: "data:image/png;base64,..."}, texture.Options{})
//	hero := stage.NewSprite(texture.FullRegion(tex))
//	hero.Transform = geom.Translate(100, 100)
//
//	for running {
//		if err := s.RenderFrame(ctx, slices.Values([]*stage.Node{hero})); err != nil {
//			log.Print(err)
//		}
//	}
//
// # Drivers
//
// The stage draws through a gpucore.Driver. Package backend selects one by
// name: backend/native renders with a wgpu HAL device and backend/recording
// records commands for tests and headless use.
//
// # Context Loss
//
// LoseContext makes the stage inert; frames still emit their events but
// issue no draws. RestoreContext starts a new epoch, and every texture,
// buffer and shader is recreated on its next use.
//
// # Logging
//
// By default stage produces no log output. Use SetLogger to enable it.
package stage
