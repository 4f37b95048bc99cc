package geometry

// Rect represents an axis-aligned box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromEdges builds a rect from its left, top, right and bottom edges.
func RectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether the two rects share any point, touching edges included.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.Right() && r.Right() >= other.X &&
		r.Y <= other.Bottom() && r.Bottom() >= other.Y
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	return RectFromEdges(
		min(r.X, other.X),
		min(r.Y, other.Y),
		max(r.Right(), other.Right()),
		max(r.Bottom(), other.Bottom()),
	)
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Expand grows the rect by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Clamp restricts r to bounds. The result may be empty.
func (r Rect) Clamp(bounds Rect) Rect {
	return RectFromEdges(
		max(r.X, bounds.X),
		max(r.Y, bounds.Y),
		min(r.Right(), bounds.Right()),
		min(r.Bottom(), bounds.Bottom()),
	)
}

// boundsOf returns the box around the given points.
func boundsOf(xs, ys []float64) Rect {
	if len(xs) == 0 {
		return Rect{}
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX = min(minX, xs[i])
		maxX = max(maxX, xs[i])
		minY = min(minY, ys[i])
		maxY = max(maxY, ys[i])
	}
	return RectFromEdges(minX, minY, maxX, maxY)
}
