// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texture implements GPU-backed image resources and their cache.
//
// A [Base] is one image that may be uploaded to the GPU. It owns the pixel
// source, logical and device-pixel dimensions, a load state, the last frame
// tick it was drawn in, and one GPU handle per device context epoch. A
// [Region] is a rectangular frame over a Base carrying the UVs sprites use.
//
// Bases are obtained from a [Cache] with [Cache.Acquire]. Synchronous sources
// (decoded images, canvases, raw pixels, text) are Ready immediately.
// Asynchronous sources (URLs, SVG) start Loading; their loads run on
// background goroutines and complete when the render loop calls
// [Cache.Poll], so every state change is observed on the render goroutine.
//
// State machine:
//
//	Empty ──► Loading ──► Ready ──► Destroyed
//	              │                    ▲
//	              └──► Errored ────────┘
//
// Bases are not safe for concurrent use.
package texture
