// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

// PackColor packs a 0xRRGGBB color and an alpha into premultiplied ABGR
// bytes, the order the GPU reads unorm8x4 in. Alpha is clamped to [0, 1].
func PackColor(rgb uint32, alpha float64) uint32 {
	alpha = min(max(alpha, 0), 1)
	a := uint32(alpha*255 + 0.5)
	r := uint32(float64(rgb>>16&0xFF)*alpha + 0.5)
	g := uint32(float64(rgb>>8&0xFF)*alpha + 0.5)
	b := uint32(float64(rgb&0xFF)*alpha + 0.5)
	return a<<24 | b<<16 | g<<8 | r
}
