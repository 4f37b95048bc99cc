// Package render draws shapes onto a Surface. The editor core never rasterizes
// itself; it talks to a gogpu/gg canvas or to a command Recorder.
package render

import (
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// Surface is the drawing target. Push and Pop save and restore the transform
// and clip; colors are plain state set before each fill or stroke.
type Surface interface {
	Push()
	Pop()
	Translate(x, y float64)
	// Rotate rotates by degrees, clockwise on screen.
	Rotate(degrees float64)
	ClipRect(x, y, w, h float64)

	SetFill(c geometry.Color)
	SetStroke(c geometry.Color, width float64)
	// SetDash sets the stroke dash pattern. No lengths means solid.
	SetDash(lengths ...float64)

	FillCircle(x, y, r float64)
	FillRect(x, y, w, h float64)
	FillPolygon(xs, ys []float64)
	StrokeCircle(x, y, r float64)
	StrokeRect(x, y, w, h float64)
	StrokeLine(x1, y1, x2, y2 float64)
}

// Selection is the precomputed overlay for the selected shape.
type Selection struct {
	// Frame is the outline the handles sit on, clockwise from top-left.
	Frame [4][2]float64
	// Handles in compass order: TL, T, TR, L, R, BL, B, BR.
	Handles  [8][2]float64
	Rotation [2]float64
	// Anchor is the top-middle handle the rotation handle hangs from.
	Anchor [2]float64
	Size   float64
}

var (
	selectionColor = geometry.Color{R: 0, G: 120, B: 215}
	handleFill     = geometry.White
)

// DrawShape paints one shape.
func DrawShape(s Surface, shape geometry.Shape) {
	s.SetFill(shape.Fill())

	switch sh := shape.(type) {
	case *geometry.Circle:
		x, y := sh.Position()
		s.FillCircle(x, y, sh.Radius())

	case *geometry.Rectangle:
		cx, cy := sh.Center()
		w, h := sh.Width(), sh.Height()
		s.Push()
		s.Translate(cx, cy)
		s.Rotate(sh.Rotation())
		s.FillRect(-w/2, -h/2, w, h)
		s.Pop()

	case *geometry.Polygon:
		x, y := sh.Position()
		xs, ys := sh.Points()
		s.Push()
		s.Translate(x, y)
		s.Rotate(sh.Rotation())
		switch len(xs) {
		case 1:
			s.FillCircle(xs[0], ys[0], 2)
		case 2:
			s.SetStroke(shape.Fill(), 2)
			s.StrokeLine(xs[0], ys[0], xs[1], ys[1])
		default:
			s.FillPolygon(xs, ys)
		}
		s.Pop()

	default:
		panic("render: unknown shape type")
	}
}

// DrawSelection paints the dashed frame, the resize handles and the rotation handle.
func DrawSelection(s Surface, sel Selection) {
	s.SetStroke(selectionColor, 1)
	s.SetDash(5, 5)
	for i := range sel.Frame {
		a, b := sel.Frame[i], sel.Frame[(i+1)%len(sel.Frame)]
		s.StrokeLine(a[0], a[1], b[0], b[1])
	}
	s.SetDash()

	s.StrokeLine(sel.Anchor[0], sel.Anchor[1], sel.Rotation[0], sel.Rotation[1])

	half := sel.Size / 2
	for _, h := range sel.Handles {
		s.SetFill(handleFill)
		s.FillRect(h[0]-half, h[1]-half, sel.Size, sel.Size)
		s.StrokeRect(h[0]-half, h[1]-half, sel.Size, sel.Size)
	}

	s.SetFill(selectionColor)
	s.FillCircle(sel.Rotation[0], sel.Rotation[1], half*1.5)
}
