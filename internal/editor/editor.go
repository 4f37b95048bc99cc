// Package editor owns the canvas state: the shapes, their z-order, the spatial
// index, the selection and the dirty region. Everything else refers to shapes
// through ShapeID handles.
package editor

import (
	"errors"
	"slices"
	"time"

	"github.com/inamate/inamate/editor-go/internal/dirty"
	"github.com/inamate/inamate/editor-go/internal/geometry"
	"github.com/inamate/inamate/editor-go/internal/render"
	"github.com/inamate/inamate/editor-go/internal/spatial"
)

// SelectionMargin is added around the selected shape when marking it dirty so
// the handles and the rotation knob get repainted too.
const SelectionMargin = 70

var ErrUnknownShape = errors.New("unknown shape")

// Indexed is what the quadtree stores for each shape.
type Indexed struct {
	ID    ShapeID
	Shape geometry.Shape
}

func (e Indexed) Contains(x, y float64) bool { return e.Shape.Contains(x, y) }

// Index is the spatial index over the editor's shapes.
type Index = spatial.Tree[Indexed]

// Stats is debug information about the editor.
type Stats struct {
	Shapes   int           `json:"shapes"`
	Selected bool          `json:"selected"`
	Tool     string        `json:"tool"`
	Rebuilds int           `json:"rebuilds"`
	Index    spatial.Stats `json:"index"`
}

type Option func(*Editor)

// WithIndexLimits configures the quadtree leaf capacity and depth.
func WithIndexLimits(maxItems, maxDepth int) Option {
	return func(e *Editor) {
		e.indexOpts = []spatial.Option{spatial.WithMaxItems(maxItems), spatial.WithMaxDepth(maxDepth)}
	}
}

// WithThrottle sets the minimum interval between processed drag events.
func WithThrottle(d time.Duration) Option {
	return func(e *Editor) { e.throttle = NewThrottler(d) }
}

// WithPolygonSides sets the vertex count of the regular polygon tool.
func WithPolygonSides(n int) Option {
	return func(e *Editor) {
		if n >= 3 {
			e.sides = n
		}
	}
}

// WithClock replaces the time source used for throttling.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.clock = now }
}

// Editor is not safe for concurrent use. Callers serialize access.
type Editor struct {
	width, height float64

	arena *Arena
	order []ShapeID

	index     *Index
	indexOpts []spatial.Option
	stale     bool
	rebuilds  int

	selected ShapeID
	dirty    *dirty.Tracker

	// Interaction state
	tool     Tool
	color    geometry.Color
	sides    int
	temp     geometry.Shape
	builder  *PolygonBuilder
	throttle *Throttler
	clock    func() time.Time
	gesture  gesture
}

// New creates an empty editor for a canvas of the given size.
func New(width, height float64, opts ...Option) *Editor {
	e := &Editor{
		width:    width,
		height:   height,
		arena:    &Arena{},
		dirty:    dirty.NewTracker(width, height),
		tool:     ToolSelect,
		color:    geometry.Blue,
		sides:    geometry.DefaultRegularPolySide,
		throttle: NewThrottler(DefaultThrottle),
		builder:  NewPolygonBuilder(geometry.Blue),
		stale:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock != nil {
		e.throttle.SetClock(e.clock)
	}
	e.index = spatial.New[Indexed](e.canvasRect(), e.indexOpts...)
	e.dirty.MarkAll()
	return e
}

// Size returns the canvas size.
func (e *Editor) Size() (float64, float64) { return e.width, e.height }

// SetSize resizes the canvas and schedules a full repaint.
func (e *Editor) SetSize(width, height float64) {
	e.width, e.height = width, height
	e.dirty.Resize(width, height)
	e.stale = true
}

// --- Shapes ---

// Add puts a shape on top of the z-order.
func (e *Editor) Add(s geometry.Shape) ShapeID {
	id := e.arena.Insert(s)
	e.order = append(e.order, id)
	e.markShape(id)
	e.stale = true
	return id
}

// Remove deletes a shape, deselecting it if needed.
func (e *Editor) Remove(id ShapeID) error {
	if _, ok := e.arena.Get(id); !ok {
		return ErrUnknownShape
	}
	e.markShape(id)
	if id == e.selected {
		e.selected = ShapeID{}
		e.gesture = gesture{}
	}
	e.order = slices.DeleteFunc(e.order, func(o ShapeID) bool { return o == id })
	e.arena.Remove(id)
	e.stale = true
	return nil
}

// Clear removes every shape and repaints the whole canvas.
func (e *Editor) Clear() {
	e.arena.Clear()
	e.order = nil
	e.selected = ShapeID{}
	e.gesture = gesture{}
	e.temp = nil
	e.builder.Cancel()
	e.index.Reset(e.canvasRect())
	e.stale = false
	e.dirty.MarkAll()
}

// Shape returns the shape behind id. Callers must go through the editor to
// mutate it, or the index and dirty region fall out of date.
func (e *Editor) Shape(id ShapeID) (geometry.Shape, bool) {
	return e.arena.Get(id)
}

// Bounds returns the cached bounding box of a shape.
func (e *Editor) Bounds(id ShapeID) (geometry.Rect, bool) {
	return e.arena.Bounds(id)
}

// Shapes returns the shapes bottom to top.
func (e *Editor) Shapes() []geometry.Shape {
	out := make([]geometry.Shape, 0, len(e.order))
	for _, id := range e.order {
		s, _ := e.arena.Get(id)
		out = append(out, s)
	}
	return out
}

// IDs returns the shape handles bottom to top.
func (e *Editor) IDs() []ShapeID { return slices.Clone(e.order) }

// Len returns the number of shapes.
func (e *Editor) Len() int { return e.arena.Len() }

// ZIndex returns the position of id in the z-order, or -1.
func (e *Editor) ZIndex(id ShapeID) int { return slices.Index(e.order, id) }

// --- Selection ---

// Select makes id the selected shape.
func (e *Editor) Select(id ShapeID) error {
	if _, ok := e.arena.Get(id); !ok {
		return ErrUnknownShape
	}
	if id == e.selected {
		return nil
	}
	e.markShape(e.selected)
	e.selected = id
	e.markShape(id)
	return nil
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	if !e.selected.Valid() {
		return
	}
	e.markShape(e.selected)
	e.selected = ShapeID{}
}

// Selected returns the selected shape, if any.
func (e *Editor) Selected() (ShapeID, bool) {
	if _, ok := e.arena.Get(e.selected); !ok {
		return ShapeID{}, false
	}
	return e.selected, true
}

// HitTest returns the topmost shape containing the point without touching the selection.
func (e *Editor) HitTest(x, y float64) (ShapeID, bool) {
	e.reindex()
	return SelectTopmostAt(x, y, e.order, e.index)
}

// SelectAt selects the topmost shape under the point, or deselects when there is none.
func (e *Editor) SelectAt(x, y float64) (ShapeID, bool) {
	id, ok := e.HitTest(x, y)
	if !ok {
		e.Deselect()
		return ShapeID{}, false
	}
	_ = e.Select(id)
	return id, true
}

// SelectTopmostAt returns the shape under (x, y) that comes last in order.
func SelectTopmostAt(x, y float64, order []ShapeID, index *Index) (ShapeID, bool) {
	hits := index.QueryPoint(x, y)
	switch len(hits) {
	case 0:
		return ShapeID{}, false
	case 1:
		return hits[0].ID, true
	}

	candidates := make(map[ShapeID]struct{}, len(hits))
	for _, h := range hits {
		candidates[h.ID] = struct{}{}
	}
	for i := len(order) - 1; i >= 0; i-- {
		if _, ok := candidates[order[i]]; ok {
			return order[i], true
		}
	}
	return ShapeID{}, false
}

// --- Mutations ---

// Move sets the reference point of a shape.
func (e *Editor) Move(id ShapeID, x, y float64) error {
	return e.mutate(id, func(s geometry.Shape) { s.Move(x, y) })
}

// MoveBy translates a shape.
func (e *Editor) MoveBy(id ShapeID, dx, dy float64) error {
	return e.mutate(id, func(s geometry.Shape) {
		x, y := s.Position()
		s.Move(x+dx, y+dy)
	})
}

// Rotate adds delta degrees to the rotation of a shape.
func (e *Editor) Rotate(id ShapeID, delta float64) error {
	return e.mutate(id, func(s geometry.Shape) { s.Rotate(delta) })
}

// SetRotation sets the absolute rotation of a shape.
func (e *Editor) SetRotation(id ShapeID, degrees float64) error {
	return e.mutate(id, func(s geometry.Shape) { s.SetRotation(degrees) })
}

// Resize scales a shape. Non-positive factors leave it unchanged.
func (e *Editor) Resize(id ShapeID, factor float64) error {
	return e.mutate(id, func(s geometry.Shape) { s.Resize(factor) })
}

// SetFill changes the fill color of a shape.
func (e *Editor) SetFill(id ShapeID, c geometry.Color) error {
	return e.mutate(id, func(s geometry.Shape) { s.SetFill(c) })
}

// SetFrame repositions and resizes a rectangle in one step.
// It reports false when the shape is not a rectangle or the size is not positive.
func (e *Editor) SetFrame(id ShapeID, x, y, w, h float64) (bool, error) {
	applied := false
	err := e.mutate(id, func(s geometry.Shape) {
		if r, ok := s.(*geometry.Rectangle); ok {
			applied = r.SetFrame(x, y, w, h)
		}
	})
	return applied, err
}

// BringToFront moves a shape to the top of the z-order.
func (e *Editor) BringToFront(id ShapeID) error {
	i := slices.Index(e.order, id)
	if i < 0 {
		return ErrUnknownShape
	}
	e.order = append(slices.Delete(e.order, i, i+1), id)
	e.markShape(id)
	return nil
}

// mutate applies fn to a shape and keeps the dirty region, bounds cache and
// index in step with it.
func (e *Editor) mutate(id ShapeID, fn func(geometry.Shape)) error {
	s, ok := e.arena.Get(id)
	if !ok {
		return ErrUnknownShape
	}
	e.markShape(id)
	fn(s)
	e.arena.Invalidate(id)
	e.markShape(id)
	e.stale = true
	return nil
}

func (e *Editor) markShape(id ShapeID) {
	b, ok := e.arena.Bounds(id)
	if !ok {
		return
	}
	if id == e.selected {
		b = b.Expand(SelectionMargin)
	}
	e.dirty.MarkRect(b)
}

func (e *Editor) canvasRect() geometry.Rect {
	return geometry.Rect{Width: e.width, Height: e.height}
}

// reindex rebuilds the quadtree when shapes changed since the last query. The
// root covers the canvas and every shape so that off-canvas parts still hit.
func (e *Editor) reindex() {
	if !e.stale {
		return
	}
	root := e.canvasRect()
	items := make([]Indexed, 0, len(e.order))
	for _, id := range e.order {
		s, _ := e.arena.Get(id)
		b, _ := e.arena.Bounds(id)
		root = root.Union(b)
		items = append(items, Indexed{ID: id, Shape: s})
	}
	e.index.Reset(root.Expand(1))
	e.index.Update(items, func(it Indexed) geometry.Rect {
		b, _ := e.arena.Bounds(it.ID)
		return b
	})
	e.stale = false
	e.rebuilds++
}

// --- Rendering ---

// MarkAll schedules a full repaint.
func (e *Editor) MarkAll() { e.dirty.MarkAll() }

// DirtyRegion returns the pending repaint region, if any.
func (e *Editor) DirtyRegion() (dirty.Region, bool) { return e.dirty.Region() }

// Redraw repaints the dirty region onto s and returns the region painted.
// With nothing marked the whole canvas is painted.
func (e *Editor) Redraw(s render.Surface) dirty.Region {
	region := e.dirty.Take()
	clip := region.Rect()

	s.Push()
	s.ClipRect(clip.X, clip.Y, clip.Width, clip.Height)
	s.SetFill(geometry.White)
	s.FillRect(clip.X, clip.Y, clip.Width, clip.Height)

	for _, id := range e.paintable(clip) {
		sh, _ := e.arena.Get(id)
		render.DrawShape(s, sh)
	}
	if e.temp != nil {
		render.DrawShape(s, e.temp)
	}
	if id, ok := e.Selected(); ok {
		sh, _ := e.arena.Get(id)
		render.DrawSelection(s, SelectionOverlay(sh))
	}

	s.Pop()
	return region
}

// paintable returns the shapes overlapping clip, bottom to top. Painting never
// rebuilds the index: a fresh one narrows the candidates, a stale one falls
// back to checking every shape's bounds.
func (e *Editor) paintable(clip geometry.Rect) []ShapeID {
	if e.stale {
		return slices.DeleteFunc(slices.Clone(e.order), func(id ShapeID) bool {
			b, _ := e.arena.Bounds(id)
			return !b.Intersects(clip)
		})
	}

	hits := e.index.QueryRect(clip)
	if len(hits) == len(e.order) {
		return e.order
	}
	in := make(map[ShapeID]struct{}, len(hits))
	for _, h := range hits {
		in[h.ID] = struct{}{}
	}
	out := make([]ShapeID, 0, len(hits))
	for _, id := range e.order {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// --- Snapshots ---

// Snapshot returns copies of the shapes bottom to top.
func (e *Editor) Snapshot() []geometry.Shape {
	out := make([]geometry.Shape, 0, len(e.order))
	for _, id := range e.order {
		s, _ := e.arena.Get(id)
		out = append(out, s.Clone())
	}
	return out
}

// Load replaces the canvas contents with shapes, bottom to top, and returns
// their handles in the same order.
func (e *Editor) Load(shapes []geometry.Shape) []ShapeID {
	e.Clear()
	ids := make([]ShapeID, len(shapes))
	for i, s := range shapes {
		ids[i] = e.arena.Insert(s)
	}
	e.order = slices.Clone(ids)
	e.stale = true
	return ids
}

// Rebuilds returns how many times the index has been rebuilt.
func (e *Editor) Rebuilds() int { return e.rebuilds }

// Stats returns counts and index debug information.
func (e *Editor) Stats() Stats {
	e.reindex()
	_, selected := e.Selected()
	return Stats{
		Shapes:   len(e.order),
		Selected: selected,
		Tool:     e.tool.String(),
		Rebuilds: e.rebuilds,
		Index:    e.index.Stats(),
	}
}
