// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/backend/recording"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/texture"
)

func newTestDevice(t *testing.T, units int, cfg Config) (*Device, *recording.Driver) {
	t.Helper()
	drv := recording.New(recording.WithMaxTextureUnits(units))
	d, err := New(drv, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d, drv
}

func readyTexture(t *testing.T, key string, w, h int) *texture.Base {
	t.Helper()
	b := texture.NewBase(key)
	if err := b.Resize(w, h); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	return b
}

type fakeRenderer struct {
	name    string
	log     *[]string
	onStart func()
	err     error
}

func (r *fakeRenderer) Start() {
	*r.log = append(*r.log, r.name+".start")
	if r.onStart != nil {
		r.onStart()
	}
}

func (r *fakeRenderer) Flush() error {
	*r.log = append(*r.log, r.name+".flush")
	return r.err
}

func (r *fakeRenderer) Stop() error {
	*r.log = append(*r.log, r.name+".stop")
	return r.err
}

func TestNewNilDriver(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); !errors.Is(err, ErrNoDriver) {
		t.Errorf("New(nil) error = %v, want ErrNoDriver", err)
	}
}

func TestUnitCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		driverMax int
		want      int
	}{
		{"driver limit", 0, 8, 8},
		{"requested below limit", 4, 8, 4},
		{"requested above limit", 12, 8, 8},
		{"clamped to max", 0, 32, MaxTextureUnits},
		{"unknown driver limit", 6, 0, 6},
		{"at least one", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unitCount(tt.requested, tt.driverMax); got != tt.want {
				t.Errorf("unitCount(%d, %d) = %d, want %d", tt.requested, tt.driverMax, got, tt.want)
			}
		})
	}
}

func TestBindTextureReusesUnit(t *testing.T) {
	d, drv := newTestDevice(t, 4, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)

	u1, err := d.BindTexture(a, -1, false)
	if err != nil {
		t.Fatalf("BindTexture() error = %v", err)
	}
	u2, err := d.BindTexture(a, -1, false)
	if err != nil {
		t.Fatalf("BindTexture() error = %v", err)
	}
	if u1 != u2 {
		t.Errorf("second BindTexture() = %d, want %d", u2, u1)
	}
	if got := drv.Count(recording.CmdCreateTexture); got != 1 {
		t.Errorf("CreateTexture count = %d, want 1", got)
	}
	if got := drv.Count(recording.CmdWriteTexture); got != 1 {
		t.Errorf("WriteTexture count = %d, want 1", got)
	}
	if got := drv.Count(recording.CmdBindTexture); got != 1 {
		t.Errorf("BindTexture count = %d, want 1", got)
	}
	if d.Unit(u1) != a {
		t.Errorf("Unit(%d) = %q, want a", u1, d.Unit(u1).Key())
	}
	h, ok := a.Handle(d.Epoch())
	if !ok || drv.Unit(u1) != h.ID {
		t.Errorf("driver unit %d = %d, want handle %d", u1, drv.Unit(u1), h.ID)
	}
}

func TestBindTextureRoundRobin(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	texs := []*texture.Base{
		readyTexture(t, "a", 1, 1),
		readyTexture(t, "b", 1, 1),
		readyTexture(t, "c", 1, 1),
	}
	want := []int{0, 1, 0}
	for i, tex := range texs {
		got, err := d.BindTexture(tex, -1, false)
		if err != nil {
			t.Fatalf("BindTexture(%s) error = %v", tex.Key(), err)
		}
		if got != want[i] {
			t.Errorf("BindTexture(%s) = %d, want %d", tex.Key(), got, want[i])
		}
	}
	if d.IsBound(texs[0]) {
		t.Error("a still bound after c took its unit")
	}
}

func TestBindTextureForce(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 1, 1)
	if _, err := d.BindTexture(a, 0, false); err != nil {
		t.Fatal(err)
	}
	got, err := d.BindTexture(a, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 || d.Unit(0) != a || d.Unit(1) != a {
		t.Errorf("forced bind: unit = %d, units = [%s %s]", got, d.Unit(0).Key(), d.Unit(1).Key())
	}
}

func TestBindTextureReupload(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}

	a.Update()
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateTexture); got != 1 {
		t.Errorf("after Update: CreateTexture count = %d, want 1", got)
	}
	if got := drv.Count(recording.CmdWriteTexture); got != 2 {
		t.Errorf("after Update: WriteTexture count = %d, want 2", got)
	}

	if err := a.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	unit, err := d.BindTexture(a, -1, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateTexture); got != 2 {
		t.Errorf("after Resize: CreateTexture count = %d, want 2", got)
	}
	if got := drv.Count(recording.CmdDestroyTexture); got != 1 {
		t.Errorf("after Resize: DestroyTexture count = %d, want 1", got)
	}
	h, _ := a.Handle(d.Epoch())
	if drv.Unit(unit) != h.ID {
		t.Errorf("driver unit %d = %d, want reallocated %d", unit, drv.Unit(unit), h.ID)
	}
	if rec, ok := drv.Texture(h.ID); !ok || rec.Desc.Width != 4 {
		t.Errorf("reallocated texture = %+v, %v", rec, ok)
	}
}

func TestBindTextureDestroyedPanics(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 1, 1)
	a.Destroy()

	defer func() {
		if recover() == nil {
			t.Error("BindTexture(destroyed) did not panic")
		}
	}()
	_, _ = d.BindTexture(a, -1, false)
}

func TestBindTextureCreateError(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 1, 1)
	boom := errors.New("out of memory")
	drv.FailNext(recording.CmdCreateTexture, boom)

	if _, err := d.BindTexture(a, -1, false); !errors.Is(err, boom) {
		t.Fatalf("BindTexture() error = %v, want %v", err, boom)
	}
	if d.IsBound(a) {
		t.Error("texture bound after failed upload")
	}
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Errorf("retry BindTexture() error = %v", err)
	}
}

func TestDestroyReleasesHandle(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)
	unit, err := d.BindTexture(a, -1, false)
	if err != nil {
		t.Fatal(err)
	}

	a.Destroy()
	if got := drv.Count(recording.CmdDestroyTexture); got != 1 {
		t.Errorf("DestroyTexture count = %d, want 1", got)
	}
	if d.Unit(unit) != d.Empty(unit) {
		t.Errorf("Unit(%d) = %q, want placeholder", unit, d.Unit(unit).Key())
	}
	if drv.Unit(unit) != gpucore.InvalidID {
		t.Errorf("driver unit %d = %d, want cleared", unit, drv.Unit(unit))
	}
	if drv.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d, want 0", drv.LiveTextures())
	}
	if s := d.Stats(); s.ResidentTextures != 0 || s.ResidentBytes != 0 {
		t.Errorf("Stats() = %v, want nothing resident", s)
	}
}

func TestReleaseTextureKeepsBase(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	d.ReleaseTexture(a)
	if a.State() != texture.StateReady {
		t.Errorf("State() = %v, want Ready", a.State())
	}
	if _, ok := a.Handle(d.Epoch()); ok {
		t.Error("handle survived ReleaseTexture")
	}
	if _, err := d.BindTexture(a, -1, false); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateTexture); got != 2 {
		t.Errorf("CreateTexture count = %d, want 2", got)
	}
}

func TestUpdateTexture(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	a := readyTexture(t, "a", 2, 2)
	if err := d.UpdateTexture(a); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateTexture(a); err != nil {
		t.Fatal(err)
	}
	if got := drv.Count(recording.CmdCreateTexture); got != 1 {
		t.Errorf("CreateTexture count = %d, want 1", got)
	}
	if got := drv.Count(recording.CmdWriteTexture); got != 2 {
		t.Errorf("WriteTexture count = %d, want 2", got)
	}
	if d.IsBound(a) {
		t.Error("UpdateTexture bound the texture")
	}
}

func TestSetObjectRenderer(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	var log []string
	a := &fakeRenderer{name: "a", log: &log}
	b := &fakeRenderer{name: "b", log: &log}

	if err := d.SetObjectRenderer(a); err != nil {
		t.Fatal(err)
	}
	if err := d.SetObjectRenderer(a); err != nil {
		t.Fatal(err)
	}
	if err := d.SetObjectRenderer(b); err != nil {
		t.Fatal(err)
	}
	if err := d.FlushRenderer(); err != nil {
		t.Fatal(err)
	}

	want := "a.start a.stop b.start b.flush"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("renderer log = %q, want %q", got, want)
	}
	if d.ObjectRenderer() != b {
		t.Error("ObjectRenderer() is not b")
	}
}

func TestSetObjectRendererStopError(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	var log []string
	boom := errors.New("flush failed")
	a := &fakeRenderer{name: "a", log: &log, err: boom}
	b := &fakeRenderer{name: "b", log: &log}

	_ = d.SetObjectRenderer(a)
	if err := d.SetObjectRenderer(b); !errors.Is(err, boom) {
		t.Errorf("SetObjectRenderer() error = %v, want %v", err, boom)
	}
	if d.ObjectRenderer() != b {
		t.Error("switch did not complete after a failing Stop")
	}
}

func TestSetObjectRendererReentrantPanics(t *testing.T) {
	d, _ := newTestDevice(t, 2, DefaultConfig())
	var log []string
	other := &fakeRenderer{name: "other", log: &log}
	a := &fakeRenderer{name: "a", log: &log, onStart: func() {
		_ = d.SetObjectRenderer(other)
	}}

	defer func() {
		if recover() == nil {
			t.Error("re-entrant SetObjectRenderer did not panic")
		}
	}()
	_ = d.SetObjectRenderer(a)
}

func TestRedundantStateSkipped(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	sh := d.Shader(gpucore.ShaderSprite)
	for range 3 {
		if err := d.BindShader(sh); err != nil {
			t.Fatal(err)
		}
		d.SetBlendMode(gpucore.BlendAdd)
		if err := d.BindRenderTarget(d.Screen()); err != nil {
			t.Fatal(err)
		}
	}
	for _, tt := range []struct {
		cmd  recording.CommandType
		want int
	}{
		{recording.CmdCreateShader, 1},
		{recording.CmdBindShader, 1},
		{recording.CmdSetBlendMode, 1},
		{recording.CmdBindFramebuffer, 1},
	} {
		if got := drv.Count(tt.cmd); got != tt.want {
			t.Errorf("%v count = %d, want %d", tt.cmd, got, tt.want)
		}
	}
}

func TestDrawIndexed(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	d.BeginFrame()
	d.DrawIndexed(gpucore.DrawTriangles, 0, 6)
	d.DrawIndexed(gpucore.DrawTriangles, 6, 0)
	if got := len(drv.Draws()); got != 1 {
		t.Errorf("draws = %d, want 1", got)
	}
	if got := d.Stats().DrawCalls; got != 1 {
		t.Errorf("Stats().DrawCalls = %d, want 1", got)
	}
	d.Clear(gputypes.Color{A: 1})
	if got := drv.Count(recording.CmdClear); got != 1 {
		t.Errorf("Clear count = %d, want 1", got)
	}
}

func TestEndFrame(t *testing.T) {
	d, drv := newTestDevice(t, 2, DefaultConfig())
	var log []string
	r := &fakeRenderer{name: "r", log: &log}
	_ = d.SetObjectRenderer(r)

	d.BeginFrame()
	if err := d.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if drv.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", drv.Frames())
	}
	if got := strings.Join(log, " "); got != "r.start r.flush" {
		t.Errorf("renderer log = %q", got)
	}

	boom := errors.New("device lost")
	drv.FailNext(recording.CmdEndFrame, boom)
	if err := d.EndFrame(); !errors.Is(err, boom) {
		t.Errorf("EndFrame() error = %v, want %v", err, boom)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{Epoch: 2, Tick: 10, DrawCalls: 3, ResidentTextures: 4, ResidentBytes: 4096, Uploads: 5, Evictions: 1}
	want := "Device[epoch 2, tick 10, 3 draws, 4 textures, 4 KB, 5 uploads, 1 evictions]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
