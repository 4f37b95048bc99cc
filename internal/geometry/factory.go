package geometry

import (
	"fmt"
	"math"
)

// Default sizes used by the one-click presets.
const (
	DefaultRadius          = 50
	DefaultRectWidth       = 100
	DefaultRectHeight      = 60
	DefaultPolygonRadius   = 50
	DefaultRegularPolySide = 5
)

// DefaultCircle returns a blue circle of radius 50.
func DefaultCircle(x, y float64) *Circle {
	return NewCircle(x, y, DefaultRadius, Blue)
}

// DefaultRectangle returns a green 100x60 rectangle with top-left at (x, y).
func DefaultRectangle(x, y float64) *Rectangle {
	return NewRectangle(x, y, DefaultRectWidth, DefaultRectHeight, Green)
}

// RegularPolygon places n vertices on a circle of the given radius around (cx, cy).
func RegularPolygon(cx, cy float64, n int, radius float64, fill Color) (*Polygon, error) {
	if n < 3 {
		return nil, fmt.Errorf("regular polygon with %d sides: %w", n, ErrTooFewPoints)
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range n {
		angle := 2 * math.Pi * float64(i) / float64(n)
		xs[i] = radius * math.Cos(angle)
		ys[i] = radius * math.Sin(angle)
	}
	return NewPolygon(cx, cy, xs, ys, fill)
}

// Triangle uses the centroid of the three points as its reference point.
func Triangle(x1, y1, x2, y2, x3, y3 float64, fill Color) *Polygon {
	cx := (x1 + x2 + x3) / 3
	cy := (y1 + y2 + y3) / 3
	p, _ := NewPolygon(cx, cy,
		[]float64{x1 - cx, x2 - cx, x3 - cx},
		[]float64{y1 - cy, y2 - cy, y3 - cy},
		fill)
	return p
}

// DefaultTriangle returns a red equilateral triangle around (cx, cy).
func DefaultTriangle(cx, cy float64) *Polygon {
	p, _ := RegularPolygon(cx, cy, 3, DefaultPolygonRadius, Red)
	return p
}

// Star alternates outer and inner radius over 2n vertices.
func Star(cx, cy float64, n int, outer, inner float64, fill Color) (*Polygon, error) {
	if n < 3 {
		return nil, fmt.Errorf("star with %d points: %w", n, ErrTooFewPoints)
	}
	total := n * 2
	xs := make([]float64, total)
	ys := make([]float64, total)
	for i := range total {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := math.Pi * float64(i) / float64(n)
		xs[i] = r * math.Cos(angle)
		ys[i] = r * math.Sin(angle)
	}
	return NewPolygon(cx, cy, xs, ys, fill)
}
