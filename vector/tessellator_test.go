// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/gpucore"
)

// vertexAt decodes vertex i of geo.
func vertexAt(geo *Geometry, i int) (geom.Point, uint32) {
	v := geo.Vertices()[i*VertexSize:]
	x := math.Float32frombits(binary.LittleEndian.Uint32(v[0:]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(v[4:]))
	return geom.Pt(float64(x), float64(y)), binary.LittleEndian.Uint32(v[8:])
}

func modes(geoms []*Geometry) []gpucore.DrawMode {
	out := make([]gpucore.DrawMode, len(geoms))
	for i, g := range geoms {
		out[i] = g.Mode
	}
	return out
}

func TestTessellatorEmpty(t *testing.T) {
	tess := NewTessellator(NewPool())
	if _, err := tess.Update(NewGraphics()); !errors.Is(err, ErrEmptyGraphics) {
		t.Errorf("Update(empty) error = %v, want ErrEmptyGraphics", err)
	}
}

func TestTessellatorFillShapes(t *testing.T) {
	circle := segmentsFor(10, 10)
	tests := []struct {
		name         string
		draw         func(g *Graphics)
		wantVertices int
		wantIndices  int
	}{
		{"rect", func(g *Graphics) { g.DrawRect(0, 0, 10, 5) }, 4, 6},
		{"circle", func(g *Graphics) { g.DrawCircle(0, 0, 10) }, circle + 1, 3 * circle},
		{"ellipse", func(g *Graphics) { g.DrawEllipse(0, 0, 10, 10) }, circle + 1, 3 * circle},
		{"triangle", func(g *Graphics) { g.DrawPolygon([]float64{0, 0, 10, 0, 5, 5}) }, 3, 3},
		{"zero rect", func(g *Graphics) { g.DrawRect(0, 0, 0, 5) }, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraphics()
			g.BeginFill(0xFF0000, 1)
			tt.draw(g)
			geoms, err := NewTessellator(NewPool()).Update(g)
			if err != nil {
				t.Fatal(err)
			}
			var v, i int
			for _, geo := range geoms {
				v += geo.VertexCount()
				i += geo.IndexCount()
			}
			if v != tt.wantVertices || i != tt.wantIndices {
				t.Errorf("vertices, indices = %d, %d, want %d, %d", v, i, tt.wantVertices, tt.wantIndices)
			}
		})
	}
}

func TestTessellatorVertexColor(t *testing.T) {
	g := NewGraphics()
	g.BeginFill(0xFF8000, 0.5)
	g.DrawRect(1, 2, 3, 4)
	geoms, err := NewTessellator(NewPool()).Update(g)
	if err != nil {
		t.Fatal(err)
	}
	p, c := vertexAt(geoms[0], 2)
	if p != geom.Pt(4, 6) {
		t.Errorf("vertex 2 = %v, want (4, 6)", p)
	}
	if want := gpucore.PackColor(0xFF8000, 0.5); c != want || c != 0x80004080 {
		t.Errorf("color = %#08x, want %#08x", c, want)
	}
}

func TestTessellatorCachesUntilMutation(t *testing.T) {
	g := NewGraphics()
	g.BeginFill(0xFF0000, 1)
	g.DrawRect(0, 0, 10, 10)
	tess := NewTessellator(NewPool())

	first, err := tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	geo := first[0]
	before := bytes.Clone(geo.Vertices())
	version := geo.Version()

	again, err := tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0] != geo || geo.Version() != version {
		t.Fatal("second Update without mutation rebuilt the geometry")
	}

	g.DrawCircle(20, 20, 5)
	after, err := tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if after[0] != geo {
		t.Error("incremental Update replaced the geometry")
	}
	if bytes.Equal(before, geo.Vertices()) {
		t.Error("geometry contents unchanged after mutation")
	}
	if !bytes.HasPrefix(geo.Vertices(), before) {
		t.Error("incremental Update rewrote the existing shape")
	}
	if got := tess.Shapes(); got != 2 {
		t.Errorf("Shapes() = %d, want 2 (rect tessellated once)", got)
	}
}

func TestTessellatorClearRecyclesGeometry(t *testing.T) {
	pool := NewPool()
	tess := NewTessellator(pool)
	g := NewGraphics()
	g.BeginFill(0, 1)
	g.DrawRect(0, 0, 10, 10)
	if _, err := tess.Update(g); err != nil {
		t.Fatal(err)
	}

	g.Clear()
	if _, err := tess.Update(g); !errors.Is(err, ErrEmptyGraphics) {
		t.Fatalf("Update after Clear error = %v, want ErrEmptyGraphics", err)
	}
	if pool.Len() != 1 {
		t.Fatalf("pool.Len() = %d, want 1", pool.Len())
	}

	g.BeginFill(0, 1)
	g.DrawCircle(0, 0, 3)
	geoms, err := tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if pool.Len() != 0 || pool.Created() != 1 {
		t.Errorf("pool Len, Created = %d, %d, want 0, 1", pool.Len(), pool.Created())
	}
	if got, want := geoms[0].VertexCount(), segmentsFor(3, 3)+1; got != want {
		t.Errorf("VertexCount() = %d, want %d", got, want)
	}
}

func TestTessellatorRebuildsEditedPath(t *testing.T) {
	g := NewGraphics()
	g.LineStyle(2, 0, 1)
	g.MoveTo(0, 0)
	g.LineTo(10, 0)
	tess := NewTessellator(NewPool())
	geoms, err := tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if got := geoms[0].VertexCount(); got != 4 {
		t.Fatalf("VertexCount() = %d, want 4", got)
	}

	clearDirty := g.ClearDirty()
	g.LineTo(10, 10)
	if g.ClearDirty() == clearDirty {
		t.Fatal("extending a tessellated path did not invalidate the cache")
	}
	geoms, err = tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(geoms) != 1 || geoms[0].VertexCount() != 6 {
		t.Errorf("geometries = %v, want one with 6 vertices", geoms)
	}
}

func TestTessellatorMiteredLines(t *testing.T) {
	g := NewGraphics()
	g.LineStyle(2, 0xFFFFFF, 1)
	g.MoveTo(0, 0)
	g.LineTo(10, 0)
	g.DrawRect(20, 0, 10, 10)
	geoms, err := NewTessellator(NewPool()).Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(geoms) != 1 {
		t.Fatalf("geometries = %d, want 1", len(geoms))
	}
	geo := geoms[0]
	// open segment: 2 points, one quad; closed rect: 4 points, 4 quads
	if geo.VertexCount() != 4+8 || geo.IndexCount() != 6+24 {
		t.Errorf("vertices, indices = %d, %d, want 12, 30", geo.VertexCount(), geo.IndexCount())
	}

	tests := []struct {
		vertex int
		want   geom.Point
	}{
		{0, geom.Pt(0, 1)},
		{1, geom.Pt(0, -1)},
		{3, geom.Pt(10, -1)},
		// the rect's top-left corner is mitered on both edges
		{4, geom.Pt(21, 1)},
		{5, geom.Pt(19, -1)},
	}
	for _, tt := range tests {
		p, _ := vertexAt(geo, tt.vertex)
		if p.Sub(tt.want).Length() > 1e-5 {
			t.Errorf("vertex %d = %v, want %v", tt.vertex, p, tt.want)
		}
	}
}

func TestTessellatorNativeLines(t *testing.T) {
	g := NewGraphics()
	g.BeginFill(0, 1)
	g.LineStyle(1, 0, 1)
	g.SetNativeLines(true)
	g.DrawRect(0, 0, 10, 10)
	g.SetNativeLines(false)
	g.DrawRect(20, 0, 10, 10)

	geoms, err := NewTessellator(NewPool()).Update(g)
	if err != nil {
		t.Fatal(err)
	}
	want := []gpucore.DrawMode{gpucore.DrawTriangles, gpucore.DrawLines, gpucore.DrawTriangles}
	if got := modes(geoms); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("modes = %v, want %v", got, want)
	}
	if geoms[1].VertexCount() != 4 || geoms[1].IndexCount() != 8 {
		t.Errorf("native lines = %d vertices, %d indices, want 4, 8", geoms[1].VertexCount(), geoms[1].IndexCount())
	}
	// second rect: fill then mitered outline share one geometry
	if geoms[2].IndexCount() != 6+24 {
		t.Errorf("last geometry indices = %d, want 30", geoms[2].IndexCount())
	}
}

func TestTessellatorHoles(t *testing.T) {
	g := NewGraphics()
	g.BeginFill(0, 1)
	g.DrawRect(0, 0, 10, 10)
	g.DrawRect(2, 2, 4, 4)
	if err := g.AddHole(); err != nil {
		t.Fatal(err)
	}
	geoms, err := NewTessellator(NewPool()).Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if geoms[0].VertexCount() != 8 || geoms[0].IndexCount() != 24 {
		t.Errorf("vertices, indices = %d, %d, want 8, 24", geoms[0].VertexCount(), geoms[0].IndexCount())
	}
}

func TestTessellatorSkipsOversizedShape(t *testing.T) {
	g := NewGraphics()
	g.LineStyle(1, 0, 1)
	g.SetNativeLines(true)
	g.MoveTo(0, 0)
	pts := make([]float64, 0, 2*(MaxVertices+1))
	for i := 1; i <= MaxVertices+1; i++ {
		pts = append(pts, float64(i), float64(i%2))
	}
	g.extend(pts...)
	g.DrawRect(0, 0, 1, 1)

	tess := NewTessellator(NewPool())
	geoms, err := tess.Update(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(geoms) != 1 || geoms[0].VertexCount() != 4 {
		t.Errorf("geometries = %v, want only the rect outline", geoms)
	}
}

func TestTessellatorDestroyedPanics(t *testing.T) {
	g := NewGraphics()
	g.DrawRect(0, 0, 1, 1)
	g.Destroy()
	defer func() {
		if recover() == nil {
			t.Error("Update of destroyed graphics did not panic")
		}
	}()
	_, _ = NewTessellator(NewPool()).Update(g)
}

func TestGraphicsDestroyReturnsGeometry(t *testing.T) {
	pool := NewPool()
	g := NewGraphics()
	g.BeginFill(0, 1)
	g.DrawRect(0, 0, 1, 1)
	g.LineStyle(1, 0, 1)
	g.SetNativeLines(true)
	g.DrawRect(0, 0, 1, 1)
	if _, err := NewTessellator(pool).Update(g); err != nil {
		t.Fatal(err)
	}
	g.Destroy()
	if pool.Len() != 2 {
		t.Errorf("pool.Len() = %d, want 2", pool.Len())
	}
}

func TestPoolTiers(t *testing.T) {
	pool := NewPool()
	small := pool.Get(10, gpucore.DrawTriangles)
	if got := cap(small.vertices) / VertexSize; got != 1<<minTier {
		t.Errorf("small capacity = %d, want %d", got, 1<<minTier)
	}
	big := pool.Get(1000, gpucore.DrawLines)
	if got := cap(big.vertices) / VertexSize; got != 1024 {
		t.Errorf("big capacity = %d, want 1024", got)
	}
	pool.Put(big)
	pool.Put(big)
	if pool.Len() != 1 {
		t.Fatalf("double Put: Len() = %d, want 1", pool.Len())
	}
	if got := pool.Get(2000, gpucore.DrawTriangles); got == big {
		t.Error("Get(2000) reused a 1024 vertex geometry")
	}
	if got := pool.Get(500, gpucore.DrawTriangles); got != big || got.Mode != gpucore.DrawTriangles {
		t.Error("Get(500) did not reuse the larger pooled geometry")
	}
	if pool.Created() != 3 {
		t.Errorf("Created() = %d, want 3", pool.Created())
	}
}
