// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/tdewolff/parse/v2"
	tstrconv "github.com/tdewolff/parse/v2/strconv"
	"github.com/tdewolff/parse/v2/xml"
)

// svgSize reads the document size from the root <svg> element: the width
// and height attributes when both are absolute, otherwise the viewBox.
func svgSize(data []byte) (float64, float64, error) {
	l := xml.NewLexer(parse.NewInputBytes(data))
	inRoot := false
	var width, height, vbW, vbH float64

	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return 0, 0, fmt.Errorf("%w: %w", ErrDecode, err)
			}
			return 0, 0, fmt.Errorf("%w: no <svg> element", ErrSVGSize)
		case xml.StartTagToken:
			inRoot = string(l.Text()) == "svg"
		case xml.AttributeToken:
			if !inRoot {
				continue
			}
			val := bytes.Trim(l.AttrVal(), `"'`)
			switch string(l.Text()) {
			case "width":
				width = svgLength(val)
			case "height":
				height = svgLength(val)
			case "viewBox":
				vbW, vbH = viewBoxSize(val)
			}
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			if !inRoot {
				continue
			}
			if width > 0 && height > 0 {
				return width, height, nil
			}
			if vbW > 0 && vbH > 0 {
				return vbW, vbH, nil
			}
			return 0, 0, ErrSVGSize
		}
	}
}

// svgLength parses an absolute SVG length. Relative units yield zero.
func svgLength(b []byte) float64 {
	v, n := tstrconv.ParseFloat(b)
	if n == 0 || !finite(v) {
		return 0
	}
	switch unit := strings.TrimSpace(string(b[n:])); unit {
	case "", "px":
		return v
	case "pt":
		return v * 96 / 72
	case "in":
		return v * 96
	case "cm":
		return v * 96 / 2.54
	case "mm":
		return v * 96 / 25.4
	default:
		return 0
	}
}

// viewBoxSize returns the width and height of a "minX minY width height"
// viewBox.
func viewBoxSize(b []byte) (float64, float64) {
	fields := strings.FieldsFunc(string(b), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return 0, 0
	}
	w, n := tstrconv.ParseFloat([]byte(fields[2]))
	if n == 0 {
		return 0, 0
	}
	h, n := tstrconv.ParseFloat([]byte(fields[3]))
	if n == 0 || !finite(w) || !finite(h) {
		return 0, 0
	}
	return w, h
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// maxRasterSize bounds the side of an SVG canvas when the cache sets no
// maximum texture size.
const maxRasterSize = 16384

// rasterizeSVG renders SVG markup into a new RGBA canvas at scale. The canvas
// is scaled down so neither side exceeds maxSize (maxRasterSize when zero);
// the returned factor is the fraction of the requested scale that was kept.
func rasterizeSVG(data []byte, scale float64, maxSize int) (*image.RGBA, float64, error) {
	w, h, err := svgSize(data)
	if err != nil {
		return nil, 0, err
	}
	if scale <= 0 {
		scale = 1
	}
	if maxSize <= 0 {
		maxSize = maxRasterSize
	}
	side := max(w, h) * scale
	if !finite(side) {
		return nil, 0, fmt.Errorf("%w: %vx%v at scale %v", ErrSVGSize, w, h, scale)
	}
	factor := 1.0
	if side > float64(maxSize) {
		factor = float64(maxSize) / side
	}
	// The epsilon keeps rounding noise from adding a pixel.
	pw := min(int(math.Ceil(w*scale*factor-1e-6)), maxSize)
	ph := min(int(math.Ceil(h*scale*factor-1e-6)), maxSize)
	if pw <= 0 || ph <= 0 {
		return nil, 0, fmt.Errorf("%w: %vx%v at scale %v", ErrSVGSize, w, h, scale)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: svg: %w", ErrDecode, err)
	}
	icon.SetTarget(0, 0, float64(pw), float64(ph))

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return img, factor, nil
}
