// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/texture"
)

// allocTable assigns texture units during one flush.
//
// slots is the virtual unit table, seeded from the device. A texture is
// claimed when its claim generation equals gen; a new generation starts
// whenever a draw group closes, which releases every slot for reuse while
// textures keep their virtual unit until a slot is taken from them.
type allocTable struct {
	slots   []*texture.Base
	virtual map[*texture.Base]int
	claimed map[*texture.Base]uint64
	gen     uint64
	cursor  int
}

func newAllocTable(units int) *allocTable {
	return &allocTable{
		slots:   make([]*texture.Base, units),
		virtual: make(map[*texture.Base]int, units),
		claimed: make(map[*texture.Base]uint64, units),
	}
}

// seed starts a flush from the device's unit table. Residents keep their
// unit without being claimed. A texture bound to several units keeps the
// first; the others start out empty.
func (t *allocTable) seed(d *device.Device) {
	clear(t.virtual)
	clear(t.claimed)
	t.cursor = 0
	t.gen++
	for i := range t.slots {
		tex := d.Unit(i)
		if t.claimed[tex] == t.gen {
			tex = d.Empty(i)
		}
		t.slots[i] = tex
		t.virtual[tex] = i
		t.claimed[tex] = t.gen
	}
	t.gen++
}

// next starts a new claim generation.
func (t *allocTable) next() { t.gen++ }

func (t *allocTable) isClaimed(tex *texture.Base) bool {
	return t.claimed[tex] == t.gen
}

// unit returns the virtual unit of tex.
func (t *allocTable) unit(tex *texture.Base) int { return t.virtual[tex] }

// claim marks tex as used by the current generation and returns its unit.
// A texture without a unit takes the first slot, scanning round-robin from
// the cursor, whose texture is not claimed.
func (t *allocTable) claim(tex *texture.Base) int {
	unit, ok := t.virtual[tex]
	if !ok {
		unit = -1
		n := len(t.slots)
		for j := range n {
			i := (j + t.cursor) % n
			old := t.slots[i]
			if t.claimed[old] == t.gen {
				continue
			}
			t.cursor++
			delete(t.virtual, old)
			t.slots[i] = tex
			t.virtual[tex] = i
			unit = i
			break
		}
		if unit < 0 {
			panic("batch: every texture unit is claimed by the current group")
		}
	}
	t.claimed[tex] = t.gen
	return unit
}
