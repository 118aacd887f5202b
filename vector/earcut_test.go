// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"math"
	"testing"
)

// triangleArea sums the unsigned area of the triangles.
func triangleArea(data []float64, tris []int) float64 {
	var sum float64
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := tris[i], tris[i+1], tris[i+2]
		ax, ay := data[2*a], data[2*a+1]
		bx, by := data[2*b], data[2*b+1]
		cx, cy := data[2*c], data[2*c+1]
		sum += math.Abs((bx-ax)*(cy-ay)-(cx-ax)*(by-ay)) / 2
	}
	return sum
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		holes    []int
		wantTris int
		wantArea float64
	}{
		{
			name:     "triangle",
			data:     []float64{0, 0, 10, 0, 0, 10},
			wantTris: 1,
			wantArea: 50,
		},
		{
			name:     "square clockwise",
			data:     []float64{0, 0, 10, 0, 10, 10, 0, 10},
			wantTris: 2,
			wantArea: 100,
		},
		{
			name:     "square counter-clockwise",
			data:     []float64{0, 0, 0, 10, 10, 10, 10, 0},
			wantTris: 2,
			wantArea: 100,
		},
		{
			name:     "concave L",
			data:     []float64{0, 0, 20, 0, 20, 10, 10, 10, 10, 20, 0, 20},
			wantTris: 4,
			wantArea: 300,
		},
		{
			name:     "square with hole",
			data:     []float64{0, 0, 10, 0, 10, 10, 0, 10, 3, 3, 7, 3, 7, 7, 3, 7},
			holes:    []int{4},
			wantTris: 8,
			wantArea: 84,
		},
		{
			name:     "two holes",
			data:     []float64{0, 0, 30, 0, 30, 10, 0, 10, 2, 2, 8, 2, 8, 8, 2, 8, 12, 2, 18, 2, 18, 8, 12, 8},
			holes:    []int{4, 8},
			wantTris: 14,
			wantArea: 300 - 72,
		},
		{
			name:     "repeated closing point",
			data:     []float64{0, 0, 10, 0, 10, 10, 0, 10, 0, 0},
			wantTris: 2,
			wantArea: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := Triangulate(tt.data, tt.holes)
			if got := len(tris) / 3; got != tt.wantTris {
				t.Errorf("triangles = %d, want %d (%v)", got, tt.wantTris, tris)
			}
			if got := triangleArea(tt.data, tris); math.Abs(got-tt.wantArea) > 1e-9 {
				t.Errorf("area = %v, want %v", got, tt.wantArea)
			}
			n := len(tt.data) / 2
			for _, i := range tris {
				if i < 0 || i >= n {
					t.Fatalf("index %d out of range [0, %d)", i, n)
				}
			}
		})
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"empty", nil},
		{"single point", []float64{1, 1}},
		{"segment", []float64{0, 0, 1, 1}},
		{"collinear", []float64{0, 0, 1, 0, 2, 0, 3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tris := Triangulate(tt.data, nil); len(tris) != 0 {
				t.Errorf("Triangulate() = %v, want no triangles", tris)
			}
		})
	}
}

func TestTriangulateCircle(t *testing.T) {
	pts := ellipsePoints(0, 0, 50, 50)
	tris := Triangulate(pts, nil)
	n := len(pts) / 2
	if got := len(tris) / 3; got != n-2 {
		t.Errorf("triangles = %d, want %d", got, n-2)
	}
	// The inscribed polygon area approaches the circle from below.
	want := float64(n) / 2 * 50 * 50 * math.Sin(2*math.Pi/float64(n))
	if got := triangleArea(pts, tris); math.Abs(got-want) > 1e-6 {
		t.Errorf("area = %v, want %v", got, want)
	}
}
