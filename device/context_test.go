// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/backend/recording"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/texture"
)

func TestLoseContextDropsDraws(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)
	d.BeginFrame()
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	drv.Reset()

	d.LoseContext()
	if !d.Lost() {
		t.Fatal("Lost() = false after LoseContext")
	}
	b := readyTexture(t, "b", 2, 2)
	if _, err := d.BindTexture(b, -1, false); err != nil {
		t.Fatal(err)
	}
	d.SetBlendMode(gpucore.BlendAdd)
	d.Clear(gputypes.Color{})
	d.DrawIndexed(gpucore.DrawTriangles, 0, 6)
	if err := d.BindShader(d.Shader(gpucore.ShaderSprite)); err != nil {
		t.Fatal(err)
	}
	if err := d.EndFrame(); err != nil {
		t.Fatal(err)
	}

	if got := len(drv.Commands()); got != 0 {
		t.Errorf("driver received %d commands while lost: %v", got, drv.Commands())
	}
	if got := d.Stats().DroppedDraws; got != 1 {
		t.Errorf("Stats().DroppedDraws = %d, want 1", got)
	}
}

func TestRestoreContextUploadsOnlyReferenced(t *testing.T) {
	d, _ := newTestDevice(t, 4, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)
	b := readyTexture(t, "b", 2, 2)
	for _, tex := range []*texture.Base{a, b} {
		if _, err := d.BindTexture(tex, -1, false); err != nil {
			t.Fatal(err)
		}
	}
	sh := d.Shader(gpucore.ShaderSprite)
	if err := d.BindShader(sh); err != nil {
		t.Fatal(err)
	}

	d.LoseContext()
	fresh := recording.New(recording.WithMaxTextureUnits(4))
	d.RestoreContext(fresh)

	if d.Epoch() != 2 || d.Lost() {
		t.Fatalf("after restore: Epoch() = %d, Lost() = %v", d.Epoch(), d.Lost())
	}
	if _, ok := a.Handle(1); ok {
		t.Error("epoch 1 handle of a survived restore")
	}
	for i := range d.MaxTextures() {
		if d.Unit(i) != d.Empty(i) {
			t.Errorf("Unit(%d) = %q after restore, want placeholder", i, d.Unit(i).Key())
		}
	}
	if d.CurrentShader() != nil {
		t.Error("shader binding survived restore")
	}

	d.BeginFrame()
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	if got := fresh.Count(recording.CmdCreateTexture); got != 1 {
		t.Errorf("CreateTexture on new context = %d, want 1", got)
	}
	if got := fresh.Count(recording.CmdDestroyTexture); got != 0 {
		t.Errorf("DestroyTexture on new context = %d, want 0 (old handles are orphaned)", got)
	}
	if _, ok := b.Handle(2); ok {
		t.Error("b uploaded without being referenced")
	}
	if got := d.Stats().ResidentTextures; got != 1 {
		t.Errorf("Stats().ResidentTextures = %d, want 1", got)
	}
}

func TestRestoreContextSameDriver(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 1, 1)
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	old, _ := a.Handle(1)

	d.RestoreContext(nil)
	if d.Driver() != drv {
		t.Error("RestoreContext(nil) replaced the driver")
	}
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	h, ok := a.Handle(2)
	if !ok || h.ID == old.ID {
		t.Errorf("handle after restore = %+v, %v; want a new ID", h, ok)
	}
}

func TestShaderUniformsReplayed(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	if err := d.Screen().Resize(200, 100); err != nil {
		t.Fatal(err)
	}
	if err := d.BindRenderTarget(d.Screen()); err != nil {
		t.Fatal(err)
	}
	sh := d.Shader(gpucore.ShaderPrimitive)
	sh.SetUniform(gpucore.UniformTint, []float32{1, 0, 0, 1})
	if err := d.BindShader(sh); err != nil {
		t.Fatal(err)
	}

	id := sh.id
	proj, ok := drv.Uniform(id, gpucore.UniformProjection)
	if !ok || len(proj) != 12 || proj[0] != 2.0/200 {
		t.Errorf("projection uniform = %v, %v", proj, ok)
	}
	if tint, ok := drv.Uniform(id, gpucore.UniformTint); !ok || tint[0] != 1 {
		t.Errorf("tint uniform = %v, %v", tint, ok)
	}

	fresh := recording.New()
	d.LoseContext()
	d.RestoreContext(fresh)
	if err := d.BindRenderTarget(d.Screen()); err != nil {
		t.Fatal(err)
	}
	if err := d.BindShader(sh); err != nil {
		t.Fatal(err)
	}
	if sh.id == gpucore.InvalidID || sh.epoch != 2 {
		t.Fatalf("shader not recreated: id %d epoch %d", sh.id, sh.epoch)
	}
	if tint, ok := fresh.Uniform(sh.id, gpucore.UniformTint); !ok || tint[0] != 1 {
		t.Errorf("tint after restore = %v, %v", tint, ok)
	}
	if _, ok := fresh.Uniform(sh.id, gpucore.UniformProjection); !ok {
		t.Error("projection not replayed after restore")
	}
}

func TestRenderTarget(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	rt, err := d.NewRenderTarget(64, 32, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !rt.Texture().Pinned() || !rt.Texture().IsRenderTarget() {
		t.Error("render target texture must be a pinned render texture")
	}
	if w, h := rt.Size(); w != 64 || h != 32 {
		t.Errorf("Size() = %dx%d, want 64x32", w, h)
	}
	if x, y := rt.Projection().Apply(32, 16); x != 1 || y != -1 {
		t.Errorf("Projection().Apply(32, 16) = (%v, %v), want (1, -1)", x, y)
	}

	if err := d.BindRenderTarget(rt); err != nil {
		t.Fatal(err)
	}
	if err := d.BindRenderTarget(rt); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateFramebuffer); got != 1 {
		t.Errorf("CreateFramebuffer count = %d, want 1", got)
	}
	if got := drv.Count(recording.CmdWriteTexture); got != 0 {
		t.Errorf("render texture uploaded %d times, want 0", got)
	}
	if d.CurrentTarget() != rt {
		t.Error("CurrentTarget() is not rt")
	}

	if err := rt.Resize(128, 32); err != nil {
		t.Fatal(err)
	}
	if err := d.BindRenderTarget(rt); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateFramebuffer); got != 2 {
		t.Errorf("after Resize: CreateFramebuffer count = %d, want 2", got)
	}
	if got := drv.Count(recording.CmdDestroyFramebuffer); got != 1 {
		t.Errorf("after Resize: DestroyFramebuffer count = %d, want 1", got)
	}

	rt.Destroy()
	if d.CurrentTarget() != nil {
		t.Error("destroyed target still current")
	}
	if drv.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d after Destroy, want 0", drv.LiveTextures())
	}
}

func TestNewRenderTargetInvalid(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	if _, err := d.NewRenderTarget(0, 10, 1); err == nil {
		t.Error("NewRenderTarget(0, 10) error = nil")
	}
}

func TestVertexArray(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	layout := gpucore.VertexLayout{Stride: 8}
	v := d.NewVertexArray(layout)

	if err := d.BindVertexArray(v); !errors.Is(err, ErrStaleVertexArray) {
		t.Errorf("BindVertexArray(unuploaded) error = %v, want ErrStaleVertexArray", err)
	}

	indices := []byte{0, 0, 1, 0, 2, 0}
	if err := v.Upload(make([]byte, 32), indices); err != nil {
		t.Fatal(err)
	}
	if !v.Current() {
		t.Fatal("Current() = false after Upload")
	}
	if err := d.BindVertexArray(v); err != nil {
		t.Fatal(err)
	}
	if err := d.BindVertexArray(v); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdBindVertexArray); got != 1 {
		t.Errorf("BindVertexArray count = %d, want 1", got)
	}

	// Growing the vertex buffer replays the retained indices.
	if err := v.Upload(make([]byte, 64), nil); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateVertexArray); got != 2 {
		t.Errorf("CreateVertexArray count = %d, want 2", got)
	}
	data, ok := drv.BufferData(v.ib)
	if !ok || data[2] != 1 || data[4] != 2 {
		t.Errorf("index buffer after grow = %v, %v", data, ok)
	}
	if err := d.BindVertexArray(v); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdBindVertexArray); got != 2 {
		t.Errorf("BindVertexArray count after grow = %d, want 2", got)
	}

	d.RestoreContext(nil)
	if v.Current() {
		t.Error("Current() = true after restore")
	}
	v.Destroy()
	if got := drv.Count(recording.CmdDestroyVertexArray); got != 1 {
		t.Errorf("DestroyVertexArray count = %d, want 1 (the grow; stale objects are orphaned)", got)
	}
}
