package editor

import (
	"errors"
	"math"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// CloseDistance is how near the first vertex a click must land to close the polygon.
const CloseDistance = 10

var ErrSegmentCrosses = errors.New("segment crosses an existing edge")

// PolygonBuilder collects clicked vertices for a free-form polygon.
type PolygonBuilder struct {
	xs, ys []float64
	fill   geometry.Color
}

func NewPolygonBuilder(fill geometry.Color) *PolygonBuilder {
	return &PolygonBuilder{fill: fill}
}

// SetFill sets the color of the polygon being built.
func (b *PolygonBuilder) SetFill(c geometry.Color) { b.fill = c }

// Len returns the number of vertices placed so far.
func (b *PolygonBuilder) Len() int { return len(b.xs) }

// Active reports whether a polygon is under construction.
func (b *PolygonBuilder) Active() bool { return len(b.xs) > 0 }

// Add places a vertex. It returns true without adding anything when the click
// closes the polygon; the caller then calls Close.
func (b *PolygonBuilder) Add(x, y float64) (closes bool, err error) {
	n := len(b.xs)
	if n > 2 && math.Hypot(x-b.xs[0], y-b.ys[0]) <= CloseDistance {
		return true, nil
	}
	if n >= 2 {
		if b.polygon().SegmentCrossesEdges(b.xs[n-1], b.ys[n-1], x, y) {
			return false, ErrSegmentCrosses
		}
	}
	b.xs = append(b.xs, x)
	b.ys = append(b.ys, y)
	return false, nil
}

// Shape returns the preview of the vertices placed so far, or nil.
func (b *PolygonBuilder) Shape() geometry.Shape {
	return preview(b.xs, b.ys, b.fill)
}

// Preview is Shape with the cursor as an extra vertex.
func (b *PolygonBuilder) Preview(x, y float64) geometry.Shape {
	if len(b.xs) == 0 {
		return nil
	}
	xs := append(append([]float64(nil), b.xs...), x)
	ys := append(append([]float64(nil), b.ys...), y)
	return preview(xs, ys, b.fill)
}

// Close finishes the polygon and resets the builder. With fewer than three
// vertices nothing is produced and the vertices are kept.
func (b *PolygonBuilder) Close() (*geometry.Polygon, error) {
	if len(b.xs) < 3 {
		return nil, geometry.ErrTooFewPoints
	}
	p := b.polygon()
	b.Cancel()
	return p, nil
}

// Cancel discards the vertices.
func (b *PolygonBuilder) Cancel() {
	b.xs, b.ys = nil, nil
}

// polygon builds the vertices relative to the first one.
func (b *PolygonBuilder) polygon() *geometry.Polygon {
	return relativePolygon(b.xs, b.ys, b.fill)
}

func relativePolygon(xs, ys []float64, fill geometry.Color) *geometry.Polygon {
	ox, oy := xs[0], ys[0]
	px := make([]float64, len(xs))
	py := make([]float64, len(ys))
	for i := range xs {
		px[i] = xs[i] - ox
		py[i] = ys[i] - oy
	}
	p, _ := geometry.NewPolygon(ox, oy, px, py, fill)
	return p
}

func preview(xs, ys []float64, fill geometry.Color) geometry.Shape {
	switch len(xs) {
	case 0:
		return nil
	case 1:
		p, _ := geometry.NewPolygon(xs[0], ys[0], []float64{-5, 5, 0}, []float64{-5, -5, 5}, fill)
		return p
	case 2:
		mx, my := (xs[0]+xs[1])/2, (ys[0]+ys[1])/2
		p, _ := geometry.NewPolygon(mx, my,
			[]float64{xs[0] - mx, xs[1] - mx},
			[]float64{ys[0] - my, ys[1] - my}, fill)
		return p
	default:
		return relativePolygon(xs, ys, fill)
	}
}
