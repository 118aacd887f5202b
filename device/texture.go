// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"

	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
	"github.com/gogpu/stage/texture"
)

// BindTexture binds tex to a texture unit and returns the unit.
//
// Unless force is set, a texture already in the unit table keeps its unit.
// Otherwise unit selects the unit, or a negative unit picks one round-robin.
// Textures without a current-epoch handle, or whose pixels changed since
// the last upload, are uploaded first.
//
// Binding a destroyed texture panics.
func (d *Device) BindTexture(tex *texture.Base, unit int, force bool) (int, error) {
	if tex.State() == texture.StateDestroyed {
		panic(fmt.Sprintf("device: bind of destroyed texture %q", tex.Key()))
	}
	if unit >= len(d.units) {
		panic(fmt.Sprintf("device: texture unit %d out of range [0, %d)", unit, len(d.units)))
	}
	tex.Touch(d.tick)

	if !force {
		for i, t := range d.units {
			if t != tex {
				continue
			}
			if d.lost || d.IsPlaceholder(tex) {
				return i, nil
			}
			h, err := d.syncTexture(tex)
			if err != nil {
				return i, err
			}
			if d.bound[i] != h.ID {
				d.drv.BindTexture(i, h.ID)
				d.bound[i] = h.ID
			}
			return i, nil
		}
	}

	if unit < 0 {
		unit = d.nextUnit
		d.nextUnit = (d.nextUnit + 1) % len(d.units)
	}
	if d.lost {
		return unit, nil
	}
	return unit, d.bindUnit(unit, tex)
}

// bindUnit puts tex on a unit and tells the driver.
func (d *Device) bindUnit(unit int, tex *texture.Base) error {
	id := gpucore.TextureID(gpucore.InvalidID)
	if !d.IsPlaceholder(tex) {
		h, err := d.syncTexture(tex)
		if err != nil {
			return err
		}
		id = h.ID
	}
	d.units[unit] = tex
	d.drv.BindTexture(unit, id)
	d.bound[unit] = id
	return nil
}

// UnbindTexture replaces every unit holding tex with its placeholder.
func (d *Device) UnbindTexture(tex *texture.Base) {
	for i, t := range d.units {
		if t != tex {
			continue
		}
		d.units[i] = d.empty[i]
		if !d.lost {
			d.drv.BindTexture(i, gpucore.InvalidID)
		}
		d.bound[i] = gpucore.InvalidID
	}
}

// UpdateTexture uploads the pixels of tex for the current epoch, reusing
// the GPU texture when the descriptor is unchanged.
func (d *Device) UpdateTexture(tex *texture.Base) error {
	if tex.State() == texture.StateDestroyed {
		panic(fmt.Sprintf("device: update of destroyed texture %q", tex.Key()))
	}
	if d.lost || d.IsPlaceholder(tex) {
		return nil
	}
	h, ok := tex.Handle(d.epoch)
	_, err := d.upload(tex, h, ok)
	return err
}

// ReleaseTexture destroys the current-epoch GPU copy of tex. The Base and
// its cache entry survive, so the next bind uploads it again.
func (d *Device) ReleaseTexture(tex *texture.Base) {
	d.UnbindTexture(tex)
	if h, ok := tex.DropHandle(d.epoch); ok {
		d.destroyHandle(h)
	}
	if id, ok := d.managed[tex]; ok {
		tex.Events().Off(id)
		delete(d.managed, tex)
	}
}

// Resident reports whether tex has an up-to-date GPU copy in the current
// epoch.
func (d *Device) Resident(tex *texture.Base) bool {
	h, ok := tex.Handle(d.epoch)
	return ok && h.Version == tex.Version() && h.Desc == tex.Desc()
}

// syncTexture returns the current-epoch handle of tex, uploading when the
// handle is missing or out of date.
func (d *Device) syncTexture(tex *texture.Base) (texture.Handle, error) {
	h, ok := tex.Handle(d.epoch)
	if ok && d.Resident(tex) {
		return h, nil
	}
	return d.upload(tex, h, ok)
}

func (d *Device) upload(tex *texture.Base, h texture.Handle, ok bool) (texture.Handle, error) {
	desc := tex.Desc()
	if !ok || h.Desc != desc {
		if ok {
			tex.DropHandle(d.epoch)
			d.destroyHandle(h)
		}
		id, err := d.drv.CreateTexture(desc)
		if err != nil {
			return texture.Handle{}, fmt.Errorf("device: create texture %q: %w", tex.Key(), err)
		}
		h = texture.Handle{ID: id, Desc: desc}
		d.stats.ResidentBytes += desc.Size()
		d.manage(tex)
	}
	if !desc.RenderTarget {
		if err := d.drv.WriteTexture(h.ID, tex.Pixels()); err != nil {
			tex.SetHandle(d.epoch, h)
			return h, fmt.Errorf("device: upload texture %q: %w", tex.Key(), err)
		}
		d.stats.Uploads++
	}
	h.Version = tex.Version()
	tex.SetHandle(d.epoch, h)
	logger.Get().Debug("device: uploaded texture",
		"key", tex.Key(), "epoch", d.epoch, "width", desc.Width, "height", desc.Height)
	return h, nil
}

func (d *Device) destroyHandle(h texture.Handle) {
	if !d.lost {
		d.drv.DestroyTexture(h.ID)
	}
	d.stats.ResidentBytes -= h.Desc.Size()
}

// manage subscribes to the disposal of tex so its GPU copy dies with it.
func (d *Device) manage(tex *texture.Base) {
	if _, ok := d.managed[tex]; ok {
		return
	}
	d.managed[tex] = tex.Events().On(texture.EventDispose, func(e texture.Event) {
		d.ReleaseTexture(e.Base)
	})
}
