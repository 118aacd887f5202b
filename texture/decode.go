// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// decodeImage decodes any registered image format into premultiplied RGBA.
func decodeImage(r io.Reader) (*image.RGBA, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	rgba := toRGBA(img)
	if rgba.Rect.Empty() {
		return nil, fmt.Errorf("%w: %s image has zero size", ErrEmptySource, format)
	}
	return rgba, nil
}

// toRGBA converts img to an *image.RGBA with a zero origin and tight stride.
// Already conforming images are returned as is.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*4 {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// fitRGBA downscales img so neither side exceeds maxSize, preserving the
// aspect ratio. It returns the image and the factor applied.
func fitRGBA(img *image.RGBA, maxSize int) (*image.RGBA, float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img, 1
	}
	f := float64(maxSize) / float64(max(w, h))
	nw := max(1, int(float64(w)*f))
	nh := max(1, int(float64(h)*f))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, f
}

// premultiply converts straight-alpha RGBA8 pixels in place.
func premultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		if a == 255 {
			continue
		}
		pix[i] = byte(uint32(pix[i]) * a / 255)
		pix[i+1] = byte(uint32(pix[i+1]) * a / 255)
		pix[i+2] = byte(uint32(pix[i+2]) * a / 255)
	}
}

// parseDataURI returns the media type and payload of a data: URI.
func parseDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URI", ErrDecode)
	}
	mediaType, params, _ := strings.Cut(header, ";")
	if strings.Contains(";"+params, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: data URI: %w", ErrDecode, err)
		}
		return mediaType, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: data URI: %w", ErrDecode, err)
	}
	return mediaType, []byte(text), nil
}

// looksLikeSVG sniffs SVG markup in the first bytes of a payload.
func looksLikeSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}
