// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package event

import "testing"

func TestEmitterOrder(t *testing.T) {
	var e Emitter[string, int]
	var got []int
	e.On("tick", func(v int) { got = append(got, v) })
	e.On("tick", func(v int) { got = append(got, v*10) })
	e.On("other", func(int) { t.Error("unexpected listener for other kind") })

	e.Emit("tick", 2)

	want := []int{2, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEmitterOff(t *testing.T) {
	var e Emitter[int, struct{}]
	calls := 0
	id := e.On(1, func(struct{}) { calls++ })

	if !e.Off(id) {
		t.Fatal("Off() = false, want true")
	}
	if e.Off(id) {
		t.Error("second Off() = true, want false")
	}
	e.Emit(1, struct{}{})
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestEmitterOnce(t *testing.T) {
	var e Emitter[int, int]
	calls := 0
	e.Once(1, func(int) { calls++ })

	e.Emit(1, 0)
	e.Emit(1, 0)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if e.Len(1) != 0 {
		t.Errorf("Len() = %d, want 0", e.Len(1))
	}
}

func TestEmitterRemoveDuringEmit(t *testing.T) {
	var e Emitter[int, int]
	var second ID
	calls := 0
	e.On(1, func(int) { e.Off(second) })
	second = e.On(1, func(int) { calls++ })

	// The snapshot still delivers to the second listener this time.
	e.Emit(1, 0)
	e.Emit(1, 0)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
