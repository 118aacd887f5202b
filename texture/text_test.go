// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func TestRasterizeText(t *testing.T) {
	img, err := rasterizeText(TextSource{Text: "Hello", Color: color.White, Padding: 2})
	if err != nil {
		t.Fatalf("rasterizeText() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 4 || b.Dy() <= 4 {
		t.Fatalf("size = %dx%d, want larger than the padding", b.Dx(), b.Dy())
	}
	inked := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("rasterized text has no coverage")
	}
}

func TestRasterizeTextEmpty(t *testing.T) {
	if _, err := rasterizeText(TextSource{}); !errors.Is(err, ErrEmptySource) {
		t.Errorf("rasterizeText(empty) error = %v, want ErrEmptySource", err)
	}
}

func TestDefaultFaceShared(t *testing.T) {
	a, err := DefaultFace()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := DefaultFace()
	if a != b {
		t.Error("DefaultFace() returned different faces")
	}
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		uri       string
		mediaType string
		data      string
		wantErr   bool
	}{
		{"data:text/plain;base64,aGk=", "text/plain", "hi", false},
		{"data:image/svg+xml,%3Csvg%3E", "image/svg+xml", "<svg>", false},
		{"data:image/png;base64,!!", "", "", true},
		{"data:nocomma", "", "", true},
	}
	for _, tt := range tests {
		mt, data, err := parseDataURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDataURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrDecode) {
				t.Errorf("parseDataURI(%q) error = %v, want ErrDecode", tt.uri, err)
			}
			continue
		}
		if mt != tt.mediaType || !bytes.Equal(data, []byte(tt.data)) {
			t.Errorf("parseDataURI(%q) = %q, %q, want %q, %q", tt.uri, mt, data, tt.mediaType, tt.data)
		}
	}
}

func TestPremultiply(t *testing.T) {
	pix := []byte{255, 128, 0, 128, 10, 20, 30, 255, 200, 200, 200, 0}
	premultiply(pix)
	want := []byte{128, 64, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	if !bytes.Equal(pix, want) {
		t.Errorf("premultiply() = %v, want %v", pix, want)
	}
}
