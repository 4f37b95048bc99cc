package editor

import (
	"fmt"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// ShapeID is a generational handle into an Arena. The zero value refers to
// nothing, and a handle goes stale once its shape is removed.
type ShapeID struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (id ShapeID) Valid() bool { return id.gen != 0 }

func (id ShapeID) String() string {
	return fmt.Sprintf("%d.%d", id.index, id.gen)
}

type slot struct {
	shape  geometry.Shape
	gen    uint32
	bounds geometry.Rect
	cached bool
}

// Arena stores shapes by ShapeID and caches their bounding boxes.
type Arena struct {
	slots []slot
	free  []uint32
	n     int
}

// Insert stores a shape and returns its handle.
func (a *Arena) Insert(s geometry.Shape) ShapeID {
	a.n++
	if k := len(a.free); k > 0 {
		idx := a.free[k-1]
		a.free = a.free[:k-1]
		sl := &a.slots[idx]
		sl.shape = s
		sl.cached = false
		return ShapeID{index: idx, gen: sl.gen}
	}
	a.slots = append(a.slots, slot{shape: s, gen: 1})
	return ShapeID{index: uint32(len(a.slots) - 1), gen: 1}
}

// Get returns the shape behind id, or false if the handle is stale.
func (a *Arena) Get(id ShapeID) (geometry.Shape, bool) {
	sl := a.lookup(id)
	if sl == nil {
		return nil, false
	}
	return sl.shape, true
}

// Bounds returns the cached bounding box of the shape.
func (a *Arena) Bounds(id ShapeID) (geometry.Rect, bool) {
	sl := a.lookup(id)
	if sl == nil {
		return geometry.Rect{}, false
	}
	if !sl.cached {
		sl.bounds = sl.shape.Bounds()
		sl.cached = true
	}
	return sl.bounds, true
}

// Invalidate drops the cached bounds after the shape changed.
func (a *Arena) Invalidate(id ShapeID) {
	if sl := a.lookup(id); sl != nil {
		sl.cached = false
	}
}

// Remove frees the slot. Existing handles to it become stale.
func (a *Arena) Remove(id ShapeID) bool {
	sl := a.lookup(id)
	if sl == nil {
		return false
	}
	sl.shape = nil
	sl.cached = false
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	a.free = append(a.free, id.index)
	a.n--
	return true
}

// Len returns the number of live shapes.
func (a *Arena) Len() int { return a.n }

// Clear removes every shape, invalidating all outstanding handles.
func (a *Arena) Clear() {
	for i := range a.slots {
		if a.slots[i].shape != nil {
			a.Remove(ShapeID{index: uint32(i), gen: a.slots[i].gen})
		}
	}
}

func (a *Arena) lookup(id ShapeID) *slot {
	if !id.Valid() || int(id.index) >= len(a.slots) {
		return nil
	}
	sl := &a.slots[id.index]
	if sl.gen != id.gen || sl.shape == nil {
		return nil
	}
	return sl
}
