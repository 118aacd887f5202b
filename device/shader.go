// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"
	"slices"

	"github.com/gogpu/stage/gpucore"
)

// Shader is a built-in program with its uniform values. The driver program
// is created lazily once per epoch and receives every stored uniform when
// it is created.
type Shader struct {
	dev  *Device
	kind gpucore.ShaderKind

	epoch uint64
	id    gpucore.ShaderID

	names    []string
	uniforms map[string][]float32
}

// Shader returns the device's shader of the given kind.
func (d *Device) Shader(kind gpucore.ShaderKind) *Shader {
	if s, ok := d.shaders[kind]; ok {
		return s
	}
	s := &Shader{dev: d, kind: kind, uniforms: make(map[string][]float32)}
	d.shaders[kind] = s
	return s
}

// Kind returns the program kind.
func (s *Shader) Kind() gpucore.ShaderKind { return s.kind }

// SetUniform stores a uniform value and forwards it to the driver when the
// program exists in the current epoch.
func (s *Shader) SetUniform(name string, data []float32) {
	if _, ok := s.uniforms[name]; !ok {
		s.names = append(s.names, name)
	}
	s.uniforms[name] = slices.Clone(data)
	if s.current() && !s.dev.lost {
		s.dev.drv.SetUniform(s.id, name, s.uniforms[name])
	}
}

// Uniform returns the stored value of a uniform.
func (s *Shader) Uniform(name string) ([]float32, bool) {
	v, ok := s.uniforms[name]
	return v, ok
}

func (s *Shader) current() bool {
	return s.id != gpucore.InvalidID && s.epoch == s.dev.epoch
}

// realize returns the driver program for the current epoch, creating it
// and uploading the stored uniforms when needed.
func (s *Shader) realize() (gpucore.ShaderID, error) {
	if s.current() {
		return s.id, nil
	}
	d := s.dev
	id, err := d.drv.CreateShader(gpucore.ShaderDesc{Kind: s.kind, MaxTextures: len(d.units)})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("device: create %v shader: %w", s.kind, err)
	}
	s.id, s.epoch = id, d.epoch
	for _, name := range s.names {
		d.drv.SetUniform(id, name, s.uniforms[name])
	}
	return id, nil
}

func (s *Shader) release() {
	if s.current() && !s.dev.lost {
		s.dev.drv.DestroyShader(s.id)
	}
	s.id = gpucore.InvalidID
}

// BindShader makes s the program for following draws and loads the
// projection of the bound render target into it.
func (d *Device) BindShader(s *Shader) error {
	if d.lost || (d.shader == s && s.current()) {
		return nil
	}
	id, err := s.realize()
	if err != nil {
		return err
	}
	d.drv.BindShader(id)
	d.shader = s
	if d.target != nil {
		u := d.target.projection.Uniform()
		s.SetUniform(gpucore.UniformProjection, u[:])
	}
	return nil
}

// CurrentShader returns the bound shader, or nil.
func (d *Device) CurrentShader() *Shader { return d.shader }
