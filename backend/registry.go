// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/stage/backend/native"
	"github.com/gogpu/stage/backend/recording"
	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
)

// Registry errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoBackend is returned by Default when no registered backend could
	// create a driver.
	ErrNoBackend = errors.New("backend: no backend could create a driver")
)

// Backend names.
const (
	BackendNative    = native.Name
	BackendRecording = recording.Name
)

// Factory creates a driver on the device of a host provider. Factories
// that do not need a GPU ignore the provider, which may be nil.
type Factory func(provider gpucontext.DeviceProvider) (gpucore.Driver, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first success wins).
	// Native > Recording (recording is the headless fallback).
	backendPriority = []string{BackendNative, BackendRecording}
)

func init() {
	Register(BackendNative, func(p gpucontext.DeviceProvider) (gpucore.Driver, error) {
		return native.New(p)
	})
	Register(BackendRecording, func(gpucontext.DeviceProvider) (gpucore.Driver, error) {
		return recording.New(), nil
	})
}

// Register registers a backend factory with the given name.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get creates a driver from the named backend.
func Get(name string, provider gpucontext.DeviceProvider) (gpucore.Driver, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	drv, err := factory(provider)
	if err != nil {
		return nil, fmt.Errorf("backend: create %s driver: %w", name, err)
	}
	return drv, nil
}

// Default creates a driver from the best backend that accepts the provider.
// Backends in the priority list are tried first, then the rest by name.
// The errors of every failed backend are joined when none succeeds.
func Default(provider gpucontext.DeviceProvider) (gpucore.Driver, error) {
	registryMu.RLock()
	order := make([]string, 0, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			order = append(order, name)
		}
	}
	rest := make([]string, 0, len(backends))
	for name := range backends {
		if !slices.Contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	registryMu.RUnlock()
	slices.Sort(rest)
	order = append(order, rest...)

	errs := []error{ErrNoBackend}
	for _, name := range order {
		drv, err := Get(name, provider)
		if err == nil {
			logger.Get().Info("backend: selected driver", "backend", name)
			return drv, nil
		}
		logger.Get().Debug("backend: driver unavailable", "backend", name, "err", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
