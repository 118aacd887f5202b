// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"

	"github.com/gogpu/stage/gpucore"
)

// minBufferSize keeps buffers non-empty and 4-byte aligned.
const minBufferSize = 4

// VertexArray is a vertex layout with its vertex and index buffers. The
// driver objects are created on the first Upload of each epoch and grow when
// an upload no longer fits.
type VertexArray struct {
	dev    *Device
	layout gpucore.VertexLayout

	epoch  uint64
	id     gpucore.VertexArrayID
	vb, ib gpucore.BufferID

	vbSize, ibSize int

	// indices is the last index data, replayed when the buffers grow.
	indices []byte
}

// NewVertexArray creates an unrealized vertex array.
func (d *Device) NewVertexArray(layout gpucore.VertexLayout) *VertexArray {
	return &VertexArray{dev: d, layout: layout}
}

// Current reports whether the vertex array holds data uploaded in the
// current epoch.
func (v *VertexArray) Current() bool {
	return v.id != gpucore.InvalidID && v.epoch == v.dev.epoch
}

// Upload writes vertex and index data. A nil indices keeps the previous
// index data; callers must pass indices on the first upload of an epoch.
// The slice is retained until the next upload with indices.
func (v *VertexArray) Upload(vertices, indices []byte) error {
	d := v.dev
	if d.lost {
		return nil
	}
	if indices != nil {
		v.indices = indices
	}
	if !v.Current() {
		v.id, v.vb, v.ib = gpucore.InvalidID, gpucore.InvalidID, gpucore.InvalidID
		v.vbSize, v.ibSize = 0, 0
	}
	if v.id == gpucore.InvalidID || len(vertices) > v.vbSize || len(v.indices) > v.ibSize {
		if err := v.allocate(max(len(vertices), v.vbSize), max(len(v.indices), v.ibSize)); err != nil {
			return err
		}
		indices = v.indices
	}
	if len(vertices) > 0 {
		if err := d.drv.WriteBuffer(v.vb, 0, vertices); err != nil {
			return fmt.Errorf("device: write vertices: %w", err)
		}
	}
	if len(indices) > 0 {
		if err := d.drv.WriteBuffer(v.ib, 0, indices); err != nil {
			return fmt.Errorf("device: write indices: %w", err)
		}
	}
	return nil
}

// allocate replaces the driver objects with ones of the given sizes.
func (v *VertexArray) allocate(vbSize, ibSize int) error {
	d := v.dev
	v.release()
	vbSize = max(alignBuffer(vbSize), minBufferSize)
	ibSize = max(alignBuffer(ibSize), minBufferSize)

	vb, err := d.drv.CreateBuffer(gpucore.BufferVertex, vbSize)
	if err != nil {
		return fmt.Errorf("device: create vertex buffer: %w", err)
	}
	ib, err := d.drv.CreateBuffer(gpucore.BufferIndex, ibSize)
	if err != nil {
		d.drv.DestroyBuffer(vb)
		return fmt.Errorf("device: create index buffer: %w", err)
	}
	id, err := d.drv.CreateVertexArray(v.layout, vb, ib)
	if err != nil {
		d.drv.DestroyBuffer(vb)
		d.drv.DestroyBuffer(ib)
		return fmt.Errorf("device: create vertex array: %w", err)
	}
	v.id, v.vb, v.ib = id, vb, ib
	v.vbSize, v.ibSize = vbSize, ibSize
	v.epoch = d.epoch
	return nil
}

func alignBuffer(n int) int { return (n + 3) &^ 3 }

// release destroys the current-epoch driver objects.
func (v *VertexArray) release() {
	d := v.dev
	if v.Current() && !d.lost {
		d.drv.DestroyVertexArray(v.id)
		d.drv.DestroyBuffer(v.vb)
		d.drv.DestroyBuffer(v.ib)
	}
	if d.vao == v {
		d.vao = nil
	}
	v.id, v.vb, v.ib = gpucore.InvalidID, gpucore.InvalidID, gpucore.InvalidID
	v.vbSize, v.ibSize = 0, 0
}

// Destroy frees the driver objects. The vertex array may be uploaded again
// afterwards.
func (v *VertexArray) Destroy() {
	v.release()
	v.indices = nil
}

// BindVertexArray selects the vertex array used by following draws.
func (d *Device) BindVertexArray(v *VertexArray) error {
	if d.lost {
		return nil
	}
	if !v.Current() {
		return ErrStaleVertexArray
	}
	if d.vao == v {
		return nil
	}
	d.drv.BindVertexArray(v.id)
	d.vao = v
	return nil
}
