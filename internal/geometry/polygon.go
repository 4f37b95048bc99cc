package geometry

import (
	"errors"
	"math"
	"slices"
)

var (
	ErrTooFewPoints  = errors.New("polygon needs more points")
	ErrPointMismatch = errors.New("polygon x and y coordinate counts differ")
)

// Polygon stores vertex offsets relative to its reference point and rotates
// about that point. Fewer than three vertices only occur in construction previews.
type Polygon struct {
	base
	pointsX []float64
	pointsY []float64
}

// NewPolygon copies the offsets. It fails if they are empty or of different lengths.
func NewPolygon(x, y float64, pointsX, pointsY []float64, fill Color) (*Polygon, error) {
	if len(pointsX) != len(pointsY) {
		return nil, ErrPointMismatch
	}
	if len(pointsX) == 0 {
		return nil, ErrTooFewPoints
	}
	return &Polygon{
		base:    base{x: x, y: y, fill: fill},
		pointsX: slices.Clone(pointsX),
		pointsY: slices.Clone(pointsY),
	}, nil
}

func (p *Polygon) Kind() Kind { return KindPolygon }

func (p *Polygon) NumPoints() int { return len(p.pointsX) }

// Points returns copies of the vertex offsets.
func (p *Polygon) Points() (xs, ys []float64) {
	return slices.Clone(p.pointsX), slices.Clone(p.pointsY)
}

// AddPoint appends a vertex offset.
func (p *Polygon) AddPoint(x, y float64) {
	p.pointsX = append(p.pointsX, x)
	p.pointsY = append(p.pointsY, y)
}

// Vertex returns vertex i in canvas coordinates, rotation applied.
func (p *Polygon) Vertex(i int) (float64, float64) {
	x, y := RotatePoint(p.pointsX[i], p.pointsY[i], p.rotation)
	return p.x + x, p.y + y
}

// Centroid is the average of the vertex offsets.
func (p *Polygon) Centroid() (float64, float64) {
	var cx, cy float64
	for i := range p.pointsX {
		cx += p.pointsX[i]
		cy += p.pointsY[i]
	}
	n := float64(len(p.pointsX))
	return cx / n, cy / n
}

// Center is the reference point plus the centroid offset.
func (p *Polygon) Center() (float64, float64) {
	cx, cy := p.Centroid()
	return p.x + cx, p.y + cy
}

// LocalBounds is the box around the unrotated offsets.
func (p *Polygon) LocalBounds() Rect {
	return boundsOf(p.pointsX, p.pointsY)
}

func (p *Polygon) Contains(px, py float64) bool {
	tx, ty := px-p.x, py-p.y
	if p.rotation != 0 {
		tx, ty = RotatePoint(tx, ty, -p.rotation)
	}

	xs, ys := p.pointsX, p.pointsY
	inside := false
	for i, j := 0, len(xs)-1; i < len(xs); j, i = i, i+1 {
		if (ys[i] > ty) != (ys[j] > ty) &&
			tx < (xs[j]-xs[i])*(ty-ys[i])/(ys[j]-ys[i])+xs[i] {
			inside = !inside
		}
	}
	return inside
}

func (p *Polygon) Bounds() Rect {
	n := len(p.pointsX)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range n {
		xs[i], ys[i] = p.Vertex(i)
	}
	return boundsOf(xs, ys)
}

func (p *Polygon) Resize(factor float64) {
	if factor > 0 {
		p.Scale(factor, factor)
	}
}

// Scale scales the offsets about their centroid, independently per axis.
func (p *Polygon) Scale(sx, sy float64) {
	if sx <= 0 || sy <= 0 {
		return
	}
	cx, cy := p.Centroid()
	for i := range p.pointsX {
		p.pointsX[i] = cx + (p.pointsX[i]-cx)*sx
		p.pointsY[i] = cy + (p.pointsY[i]-cy)*sy
	}
}

// SegmentCrossesEdges reports whether the segment (x1,y1)-(x2,y2), given in
// canvas coordinates, crosses any edge of the unrotated polygon. Edges sharing
// an endpoint with the segment are skipped.
func (p *Polygon) SegmentCrossesEdges(x1, y1, x2, y2 float64) bool {
	n := len(p.pointsX)
	if n < 2 {
		return false
	}
	for i := range n {
		next := (i + 1) % n
		ax, ay := p.x+p.pointsX[i], p.y+p.pointsY[i]
		bx, by := p.x+p.pointsX[next], p.y+p.pointsY[next]
		if sharesEndpoint(x1, y1, x2, y2, ax, ay) || sharesEndpoint(x1, y1, x2, y2, bx, by) {
			continue
		}
		if segmentsIntersect(x1, y1, x2, y2, ax, ay, bx, by) {
			return true
		}
	}
	return false
}

func (p *Polygon) Clone() Shape {
	cp := *p
	cp.pointsX = slices.Clone(p.pointsX)
	cp.pointsY = slices.Clone(p.pointsY)
	return &cp
}

func sharesEndpoint(x1, y1, x2, y2, px, py float64) bool {
	return (x1 == px && y1 == py) || (x2 == px && y2 == py)
}

// segmentsIntersect treats near-parallel segments as disjoint.
func segmentsIntersect(x1, y1, x2, y2, x3, y3, x4, y4 float64) bool {
	d1x, d1y := x2-x1, y2-y1
	d2x, d2y := x4-x3, y4-y3

	det := d1x*d2y - d1y*d2x
	if math.Abs(det) < 1e-10 {
		return false
	}

	dx, dy := x3-x1, y3-y1
	t := (dx*d2y - dy*d2x) / det
	u := (dx*d1y - dy*d1x) / det
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}
