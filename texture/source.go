// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"hash/fnv"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/font"
)

// Source describes where a texture's pixels come from.
type Source interface {
	// Key returns the natural cache key, or "" when the cache must assign
	// a synthetic one.
	Key() string
}

// ImageSource is an already decoded image. It is Ready on acquire.
type ImageSource struct {
	Image image.Image
	// Name is used as the cache key when set.
	Name string
}

// Key implements Source.
func (s ImageSource) Key() string { return s.Name }

// CanvasSource is a mutable RGBA canvas. The texture reads the canvas at
// upload time, so drawing into it and calling Base.Update refreshes the GPU
// copy. Canvases get a synthetic key (canvas_N) that stays stable for the
// same canvas pointer.
type CanvasSource struct {
	Canvas *image.RGBA
}

// Key implements Source.
func (CanvasSource) Key() string { return "" }

// RawSource is a buffer of RGBA8 pixels.
type RawSource struct {
	Pixels        []byte
	Width, Height int
	// Premultiplied reports whether Pixels already carry premultiplied
	// alpha. Straight alpha is converted on acquire.
	Premultiplied bool
	Name          string
}

// Key implements Source.
func (s RawSource) Key() string { return s.Name }

// URLSource is an image fetched through the cache Loader. Data URIs are
// decoded without a Loader. URLs ending in .svg, and data URIs with an
// image/svg+xml media type, are rasterized as SVG.
type URLSource struct {
	URL string
}

// Key implements Source.
func (s URLSource) Key() string { return s.URL }

// SVGSource is SVG content given inline or by URL. Exactly one of Markup and
// URL should be set. Scale multiplies the document size; zero uses the cache
// default.
type SVGSource struct {
	Markup string
	URL    string
	Scale  float64
}

// Key implements Source.
func (s SVGSource) Key() string {
	if s.URL != "" {
		return s.URL
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Markup))
	return "svg_" + strconv.FormatUint(h.Sum64(), 16)
}

// TextSource is a single line of text rasterized into a canvas texture.
type TextSource struct {
	Text string
	// Face defaults to Go Regular at 16px.
	Face font.Face
	// Color defaults to opaque black.
	Color   color.Color
	Padding int
}

// Key implements Source.
func (TextSource) Key() string { return "" }

// isDataURI reports whether s is a data: URI.
func isDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// isSVGURL reports whether a URL names SVG content.
func isSVGURL(s string) bool {
	if isDataURI(s) {
		header, _, _ := strings.Cut(s, ",")
		return strings.HasPrefix(header, "data:image/svg+xml")
	}
	path, _, _ := strings.Cut(s, "?")
	return strings.HasSuffix(strings.ToLower(path), ".svg")
}
