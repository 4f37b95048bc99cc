// Package dirty accumulates the part of the canvas that needs repainting.
package dirty

import "github.com/inamate/inamate/editor-go/internal/geometry"

// Margin is added around every marked area to cover anti-aliasing and handle overdraw.
const Margin = 5.0

// Region is a single dirty box in canvas coordinates.
type Region struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Rect converts the region to a geometry.Rect.
func (r Region) Rect() geometry.Rect {
	return geometry.RectFromEdges(r.Left, r.Top, r.Right, r.Bottom)
}

// Area returns the region's area.
func (r Region) Area() float64 {
	return (r.Right - r.Left) * (r.Bottom - r.Top)
}

// Tracker keeps one accumulated region rather than a list, so marking is O(1)
// at the cost of sometimes repainting more than needed.
type Tracker struct {
	width, height float64
	region        Region
	marked        bool
}

// NewTracker creates a clean tracker for a canvas of the given size.
func NewTracker(width, height float64) *Tracker {
	return &Tracker{width: width, height: height}
}

// Resize changes the canvas size and marks all of it.
func (t *Tracker) Resize(width, height float64) {
	t.width, t.height = width, height
	t.MarkAll()
}

// Mark grows the region to include the given box plus Margin, clamped to the
// canvas. Boxes with nothing left after clamping are ignored.
func (t *Tracker) Mark(left, top, right, bottom float64) {
	left = max(left-Margin, 0)
	top = max(top-Margin, 0)
	right = min(right+Margin, t.width)
	bottom = min(bottom+Margin, t.height)

	if left >= right || top >= bottom {
		return
	}

	if !t.marked {
		t.region = Region{Left: left, Top: top, Right: right, Bottom: bottom}
		t.marked = true
		return
	}

	t.region.Left = min(t.region.Left, left)
	t.region.Top = min(t.region.Top, top)
	t.region.Right = max(t.region.Right, right)
	t.region.Bottom = max(t.region.Bottom, bottom)
}

// MarkRect marks r.
func (t *Tracker) MarkRect(r geometry.Rect) {
	t.Mark(r.Left(), r.Top(), r.Right(), r.Bottom())
}

// MarkAll marks the whole canvas.
func (t *Tracker) MarkAll() {
	t.region = t.full()
	t.marked = t.width > 0 && t.height > 0
}

// Region returns the accumulated region and whether anything was marked.
func (t *Tracker) Region() (Region, bool) {
	return t.region, t.marked
}

// Take returns the region to repaint and resets the tracker. With nothing
// marked the whole canvas is returned.
func (t *Tracker) Take() Region {
	r, ok := t.region, t.marked
	t.Reset()
	if !ok {
		return t.full()
	}
	return r
}

// Reset forgets the accumulated region.
func (t *Tracker) Reset() {
	t.region = Region{}
	t.marked = false
}

func (t *Tracker) full() Region {
	return Region{Right: t.width, Bottom: t.height}
}
