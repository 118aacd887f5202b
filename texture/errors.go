// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import "errors"

// Sentinel errors for texture operations.
var (
	// ErrEmptySource is returned when a source has no pixels or zero size.
	ErrEmptySource = errors.New("texture: empty source")

	// ErrSVGSize is returned when SVG markup has no usable width and height.
	ErrSVGSize = errors.New("texture: SVG has no size")

	// ErrNoLoader is returned when a URL needs fetching and no Loader is set.
	ErrNoLoader = errors.New("texture: no loader configured")

	// ErrDecode is returned when image bytes cannot be decoded.
	ErrDecode = errors.New("texture: decode failed")

	// ErrUnsupportedSource is returned for source types the cache cannot load.
	ErrUnsupportedSource = errors.New("texture: unsupported source")

	// ErrFrameOutOfBounds is returned when a region frame exceeds its base.
	ErrFrameOutOfBounds = errors.New("texture: frame outside base texture")

	// ErrDestroyed is returned when operating on a destroyed texture.
	ErrDestroyed = errors.New("texture: destroyed")
)
