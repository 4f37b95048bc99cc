// Package spatial holds the quadtree used to find shapes under a point.
package spatial

import (
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

const (
	DefaultMaxItems = 10
	DefaultMaxDepth = 8
)

// Item is anything the tree can hold. Contains refines the bounding-box
// candidates of a point query.
type Item interface {
	comparable
	Contains(x, y float64) bool
}

// Stats describes the current shape of a tree.
type Stats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Entries int `json:"entries"`
	Depth   int `json:"depth"`
}

type Option func(*options)

type options struct {
	maxItems int
	maxDepth int
}

// WithMaxItems sets how many entries a leaf holds before it splits.
func WithMaxItems(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxItems = n
		}
	}
}

// WithMaxDepth caps how deep nodes split.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxDepth = n
		}
	}
}

// Tree is a region quadtree. Items whose bounds straddle cells are stored in
// every cell they overlap.
type Tree[T Item] struct {
	opts options
	root *node[T]
	n    int
}

type entry[T Item] struct {
	item   T
	bounds geometry.Rect
}

type node[T Item] struct {
	boundary geometry.Rect
	depth    int
	entries  []entry[T]
	children *[4]*node[T]
}

// New creates an empty tree covering boundary.
func New[T Item](boundary geometry.Rect, opts ...Option) *Tree[T] {
	o := options{maxItems: DefaultMaxItems, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[T]{opts: o, root: &node[T]{boundary: boundary}}
}

// Len returns the number of successful inserts since the last reset.
func (t *Tree[T]) Len() int { return t.n }

// Reset empties the tree and moves its root to boundary.
func (t *Tree[T]) Reset(boundary geometry.Rect) {
	t.root = &node[T]{boundary: boundary}
	t.n = 0
}

// Clear empties the tree, keeping its boundary.
func (t *Tree[T]) Clear() {
	t.Reset(t.root.boundary)
}

// Update clears the tree and inserts every item again.
func (t *Tree[T]) Update(items []T, boundsOf func(T) geometry.Rect) {
	t.Clear()
	for _, it := range items {
		t.Insert(it, boundsOf(it))
	}
}

// Insert adds item with the given bounds. It returns false if the bounds do
// not overlap the tree.
func (t *Tree[T]) Insert(item T, bounds geometry.Rect) bool {
	if !t.root.insert(entry[T]{item: item, bounds: bounds}, &t.opts) {
		return false
	}
	t.n++
	return true
}

// QueryPoint returns the items that contain (x, y).
func (t *Tree[T]) QueryPoint(x, y float64) []T {
	var out []T
	t.root.queryPoint(x, y, &out)
	return out
}

// QueryRect returns each item whose bounds overlap r once.
func (t *Tree[T]) QueryRect(r geometry.Rect) []T {
	seen := make(map[T]struct{})
	var out []T
	t.root.queryRect(r, seen, &out)
	return out
}

// Stats walks the tree.
func (t *Tree[T]) Stats() Stats {
	var s Stats
	t.root.stats(&s)
	return s
}

// containsPoint uses half-open cells so each point belongs to one child.
func (n *node[T]) containsPoint(x, y float64) bool {
	b := n.boundary
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// overlaps is inclusive on the far edges of r so that any point r's item can
// contain lands in a cell holding it.
func (n *node[T]) overlaps(r geometry.Rect) bool {
	b := n.boundary
	return r.Left() < b.X+b.Width && r.Right() >= b.X &&
		r.Top() < b.Y+b.Height && r.Bottom() >= b.Y
}

func (n *node[T]) insert(e entry[T], o *options) bool {
	if !n.overlaps(e.bounds) {
		return false
	}

	if n.children == nil {
		if len(n.entries) < o.maxItems || n.depth >= o.maxDepth {
			n.entries = append(n.entries, e)
			return true
		}
		n.split(o)
	}

	inserted := false
	for _, c := range n.children {
		if c.insert(e, o) {
			inserted = true
		}
	}
	return inserted
}

func (n *node[T]) split(o *options) {
	b := n.boundary
	hw, hh := b.Width/2, b.Height/2
	n.children = &[4]*node[T]{
		{boundary: geometry.Rect{X: b.X, Y: b.Y, Width: hw, Height: hh}, depth: n.depth + 1},
		{boundary: geometry.Rect{X: b.X + hw, Y: b.Y, Width: hw, Height: hh}, depth: n.depth + 1},
		{boundary: geometry.Rect{X: b.X, Y: b.Y + hh, Width: hw, Height: hh}, depth: n.depth + 1},
		{boundary: geometry.Rect{X: b.X + hw, Y: b.Y + hh, Width: hw, Height: hh}, depth: n.depth + 1},
	}

	old := n.entries
	n.entries = nil
	for _, e := range old {
		for _, c := range n.children {
			c.insert(e, o)
		}
	}
}

func (n *node[T]) queryPoint(x, y float64, out *[]T) {
	if !n.containsPoint(x, y) {
		return
	}
	if n.children == nil {
		for _, e := range n.entries {
			if e.item.Contains(x, y) {
				*out = append(*out, e.item)
			}
		}
		return
	}
	for _, c := range n.children {
		c.queryPoint(x, y, out)
	}
}

func (n *node[T]) queryRect(r geometry.Rect, seen map[T]struct{}, out *[]T) {
	if !n.boundary.Intersects(r) {
		return
	}
	if n.children == nil {
		for _, e := range n.entries {
			if _, dup := seen[e.item]; dup || !e.bounds.Intersects(r) {
				continue
			}
			seen[e.item] = struct{}{}
			*out = append(*out, e.item)
		}
		return
	}
	for _, c := range n.children {
		c.queryRect(r, seen, out)
	}
}

func (n *node[T]) stats(s *Stats) {
	s.Nodes++
	s.Depth = max(s.Depth, n.depth)
	if n.children == nil {
		s.Leaves++
		s.Entries += len(n.entries)
		return
	}
	for _, c := range n.children {
		c.stats(s)
	}
}
