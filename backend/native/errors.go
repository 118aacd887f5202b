// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoHALDevice is returned when a provider does not expose a HAL
	// device and queue.
	ErrNoHALDevice = errors.New("native: provider does not expose a HAL device")

	// ErrNoAdapter is returned when a standalone backend finds no adapter.
	ErrNoAdapter = errors.New("native: no GPU adapter available")

	// ErrBackendNotAvailable is returned when the requested HAL backend is
	// not compiled in.
	ErrBackendNotAvailable = errors.New("native: HAL backend not available")

	// ErrUnaligned is returned for buffer writes at offsets that are not a
	// multiple of four bytes.
	ErrUnaligned = errors.New("native: unaligned buffer write")

	// ErrNotRenderTarget is returned when a framebuffer wraps a texture that
	// was not created as a render target.
	ErrNotRenderTarget = errors.New("native: texture is not a render target")

	// ErrShaderCompile is returned when a built-in shader fails to compile.
	ErrShaderCompile = errors.New("native: shader compilation failed")

	// ErrDestroyed is returned by calls on a destroyed driver.
	ErrDestroyed = errors.New("native: driver destroyed")
)
