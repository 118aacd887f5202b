// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestMatrixApply(t *testing.T) {
	tests := []struct {
		name   string
		m      Matrix
		x, y   float64
		wx, wy float64
	}{
		{"identity", Identity(), 3, 4, 3, 4},
		{"translate", Translate(10, -5), 1, 1, 11, -4},
		{"scale", Scale(2, 3), 1, 1, 2, 3},
		{"rotate90", Rotate(math.Pi / 2), 1, 0, 0, 1},
		{"translate*scale", Translate(10, 0).Multiply(Scale(2, 2)), 1, 1, 12, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.Apply(tt.x, tt.y)
			if !near(x, tt.wx) || !near(y, tt.wy) {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wx, tt.wy)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, 7).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	got := m.Multiply(m.Invert())
	id := Identity()
	for _, pair := range [][2]float64{{got.A, id.A}, {got.B, id.B}, {got.C, id.C}, {got.D, id.D}, {got.E, id.E}, {got.F, id.F}} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Fatalf("m * m.Invert() = %+v, want identity", got)
		}
	}
	if !Scale(0, 0).Invert().IsIdentity() {
		t.Error("singular Invert() should return identity")
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(800, 600, false)
	tests := []struct {
		x, y   float64
		cx, cy float64
	}{
		{0, 0, -1, 1},
		{800, 600, 1, -1},
		{400, 300, 0, 0},
	}
	for _, tt := range tests {
		x, y := m.Apply(tt.x, tt.y)
		if !near(x, tt.cx) || !near(y, tt.cy) {
			t.Errorf("Ortho.Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.cx, tt.cy)
		}
	}

	x, y := Ortho(100, 100, true).Apply(0, 0)
	if !near(x, -1) || !near(y, -1) {
		t.Errorf("flipped Ortho.Apply(0, 0) = (%v, %v), want (-1, -1)", x, y)
	}
}

func TestUniformLayout(t *testing.T) {
	u := Translate(3, 4).Uniform()
	if u[8] != 3 || u[9] != 4 || u[10] != 1 {
		t.Errorf("translation column = %v, want [3 4 1]", u[8:11])
	}
	if u[0] != 1 || u[5] != 1 {
		t.Errorf("diagonal = (%v, %v), want (1, 1)", u[0], u[5])
	}
}

func TestRectUnionAndBounds(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}.Union(Rect{X: 5, Y: -5, W: 10, H: 5})
	want := Rect{X: 0, Y: -5, W: 15, H: 15}
	if r != want {
		t.Errorf("Union() = %+v, want %+v", r, want)
	}
	if got := (Rect{}).Union(want); got != want {
		t.Errorf("empty.Union() = %+v, want %+v", got, want)
	}

	b := Bounds([]float64{1, 2, -3, 8, 4, 0})
	if b != (Rect{X: -3, Y: 0, W: 7, H: 8}) {
		t.Errorf("Bounds() = %+v", b)
	}
	if !b.Contains(Pt(0, 1)) || b.Contains(Pt(4, 8)) {
		t.Error("Contains() gave wrong answers on edges")
	}
}
