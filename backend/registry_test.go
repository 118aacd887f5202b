// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/stage/backend/native"
	"github.com/gogpu/stage/backend/recording"
	"github.com/gogpu/stage/gpucore"
)

// isolate restores the registry after the test.
func isolate(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := maps.Clone(backends)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func TestBuiltinBackendsRegistered(t *testing.T) {
	for _, name := range []string{BackendNative, BackendRecording} {
		if !IsRegistered(name) {
			t.Errorf("IsRegistered(%q) = false, want true", name)
		}
	}
	if got := Available(); !slices.IsSorted(got) || len(got) < 2 {
		t.Errorf("Available() = %v, want sorted builtin names", got)
	}
}

func TestGet(t *testing.T) {
	drv, err := Get(BackendRecording, nil)
	if err != nil {
		t.Fatalf("Get(recording) error = %v", err)
	}
	defer drv.Destroy()
	if drv.Name() != recording.Name {
		t.Errorf("Name() = %q, want %q", drv.Name(), recording.Name)
	}

	if _, err := Get("missing", nil); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Get(missing) error = %v, want ErrBackendNotAvailable", err)
	}
	if _, err := Get(BackendNative, nil); !errors.Is(err, native.ErrNoHALDevice) {
		t.Errorf("Get(native, nil) error = %v, want ErrNoHALDevice", err)
	}
}

func TestDefaultFallsBackToRecording(t *testing.T) {
	drv, err := Default(nil)
	if err != nil {
		t.Fatalf("Default(nil) error = %v", err)
	}
	defer drv.Destroy()
	if drv.Name() != BackendRecording {
		t.Errorf("Default(nil) = %q, want %q without a HAL device", drv.Name(), BackendRecording)
	}
}

func TestDefaultPrefersPriority(t *testing.T) {
	isolate(t)
	var calls []string
	fake := func(name string) Factory {
		return func(gpucontext.DeviceProvider) (gpucore.Driver, error) {
			calls = append(calls, name)
			return recording.New(), nil
		}
	}
	Register("aaa", fake("aaa"))
	Register(BackendNative, fake(BackendNative))

	if _, err := Default(nil); err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(calls) != 1 || calls[0] != BackendNative {
		t.Errorf("factories called = %v, want [native]", calls)
	}
}

func TestDefaultJoinsErrors(t *testing.T) {
	isolate(t)
	errBroken := errors.New("broken")
	Unregister(BackendNative)
	Unregister(BackendRecording)
	Register("broken", func(gpucontext.DeviceProvider) (gpucore.Driver, error) {
		return nil, errBroken
	})

	_, err := Default(nil)
	if !errors.Is(err, ErrNoBackend) || !errors.Is(err, errBroken) {
		t.Errorf("Default() error = %v, want ErrNoBackend joined with the factory error", err)
	}
}

func TestUnregister(t *testing.T) {
	isolate(t)
	Unregister(BackendRecording)
	if IsRegistered(BackendRecording) {
		t.Error("IsRegistered() = true after Unregister")
	}
}
