// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultTextSize is the pixel size of the default text face.
const DefaultTextSize = 16

var (
	defaultFaceOnce sync.Once
	defaultFace     font.Face
	defaultFaceErr  error
)

// DefaultFace returns Go Regular at DefaultTextSize pixels.
func DefaultFace() (font.Face, error) {
	defaultFaceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			defaultFaceErr = fmt.Errorf("texture: parse default font: %w", err)
			return
		}
		defaultFace, defaultFaceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    DefaultTextSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return defaultFace, defaultFaceErr
}

// rasterizeText draws one line of text into a canvas sized to its advance
// and the face's line metrics.
func rasterizeText(src TextSource) (*image.RGBA, error) {
	if src.Text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrEmptySource)
	}
	face := src.Face
	if face == nil {
		var err error
		if face, err = DefaultFace(); err != nil {
			return nil, err
		}
	}
	col := src.Color
	if col == nil {
		col = color.Black
	}

	m := face.Metrics()
	advance := font.MeasureString(face, src.Text)
	pad := max(src.Padding, 0)
	w := advance.Ceil() + 2*pad
	h := (m.Ascent + m.Descent).Ceil() + 2*pad
	if w <= 2*pad || h <= 2*pad {
		return nil, fmt.Errorf("%w: text %q measures %dx%d", ErrEmptySource, src.Text, w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(pad, pad+m.Ascent.Ceil()),
	}
	d.DrawString(src.Text)
	return img, nil
}
