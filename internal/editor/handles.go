package editor

import (
	"math"

	"github.com/inamate/inamate/editor-go/internal/geometry"
	"github.com/inamate/inamate/editor-go/internal/render"
)

// Handle identifies a grip on the selection frame.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleLeft
	HandleRight
	HandleBottomLeft
	HandleBottom
	HandleBottomRight
	HandleRotation
)

const (
	// HandleSize is the side of a handle square in pixels.
	HandleSize = 8
	// RotationHandleOffset is the gap between the frame top and the rotation handle.
	RotationHandleOffset = 20
	// RotationSmoothing is the fraction of the remaining angle applied per drag event.
	RotationSmoothing = 0.2
)

var handleNames = [...]string{
	HandleNone:        "none",
	HandleTopLeft:     "top-left",
	HandleTop:         "top",
	HandleTopRight:    "top-right",
	HandleLeft:        "left",
	HandleRight:       "right",
	HandleBottomLeft:  "bottom-left",
	HandleBottom:      "bottom",
	HandleBottomRight: "bottom-right",
	HandleRotation:    "rotation",
}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "none"
	}
	return handleNames[h]
}

// ParseHandle maps a handle name back to a Handle.
func ParseHandle(s string) (Handle, bool) {
	for i, name := range handleNames {
		if name == s {
			return Handle(i), true
		}
	}
	return HandleNone, false
}

// Unit position of each compass handle on the frame, -1..1 per axis.
var handleUnit = [...][2]float64{
	HandleTopLeft:     {-1, -1},
	HandleTop:         {0, -1},
	HandleTopRight:    {1, -1},
	HandleLeft:        {-1, 0},
	HandleRight:       {1, 0},
	HandleBottomLeft:  {-1, 1},
	HandleBottom:      {0, 1},
	HandleBottomRight: {1, 1},
}

var (
	compassOrder = [...]Handle{
		HandleTopLeft, HandleTop, HandleTopRight, HandleLeft,
		HandleRight, HandleBottomLeft, HandleBottom, HandleBottomRight,
	}
	// Rotated frames favour corners where handles overlap.
	rotatedOrder = [...]Handle{
		HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight,
		HandleTop, HandleLeft, HandleRight, HandleBottom,
	}
)

// frame is the rotated box the handles sit on.
type frame struct {
	cx, cy   float64
	w, h     float64
	rotation float64
}

func frameOf(s geometry.Shape) frame {
	switch sh := s.(type) {
	case *geometry.Circle:
		x, y := sh.Position()
		d := 2 * sh.Radius()
		return frame{cx: x, cy: y, w: d, h: d, rotation: sh.Rotation()}
	case *geometry.Rectangle:
		cx, cy := sh.Center()
		return frame{cx: cx, cy: cy, w: sh.Width(), h: sh.Height(), rotation: sh.Rotation()}
	case *geometry.Polygon:
		lb := sh.LocalBounds()
		lx, ly := lb.Center()
		ox, oy := geometry.RotatePoint(lx, ly, sh.Rotation())
		x, y := sh.Position()
		return frame{cx: x + ox, cy: y + oy, w: lb.Width, h: lb.Height, rotation: sh.Rotation()}
	default:
		panic("editor: unknown shape type")
	}
}

// toWorld maps a frame-local point to canvas coordinates.
func (f frame) toWorld(lx, ly float64) (float64, float64) {
	x, y := geometry.RotatePoint(lx, ly, f.rotation)
	return f.cx + x, f.cy + y
}

// toLocal maps a canvas point into the unrotated frame.
func (f frame) toLocal(x, y float64) (float64, float64) {
	return geometry.RotatePoint(x-f.cx, y-f.cy, -f.rotation)
}

func (f frame) handle(h Handle) (float64, float64) {
	u := handleUnit[h]
	return f.toWorld(u[0]*f.w/2, u[1]*f.h/2)
}

func (f frame) rotationHandle() (float64, float64) {
	d := f.h/2 + RotationHandleOffset
	rad := geometry.Radians(f.rotation)
	return f.cx + d*math.Sin(rad), f.cy - d*math.Cos(rad)
}

// HandlePositions returns the eight compass handles, in Handle order from
// HandleTopLeft, and the rotation handle.
func HandlePositions(s geometry.Shape) (handles [8][2]float64, rotation [2]float64) {
	f := frameOf(s)
	for i, h := range compassOrder {
		handles[i][0], handles[i][1] = f.handle(h)
	}
	rotation[0], rotation[1] = f.rotationHandle()
	return handles, rotation
}

// HandleAt returns the handle of s under (x, y). The rotation handle wins over
// compass handles.
func HandleAt(s geometry.Shape, x, y float64) Handle {
	f := frameOf(s)
	const half = HandleSize / 2.0

	rx, ry := f.rotationHandle()
	if within(x, y, rx, ry, half*1.5) {
		return HandleRotation
	}

	order := compassOrder
	if f.rotation != 0 {
		order = rotatedOrder
	}
	for _, h := range order {
		hx, hy := f.handle(h)
		if within(x, y, hx, hy, half) {
			return h
		}
	}
	return HandleNone
}

// within reports whether (x, y) lies in the circle of radius tol around (cx, cy).
func within(x, y, cx, cy, tol float64) bool {
	return math.Hypot(x-cx, y-cy) <= tol
}

// SelectionOverlay computes the frame and handles drawn around a selected shape.
func SelectionOverlay(s geometry.Shape) render.Selection {
	f := frameOf(s)
	handles, rot := HandlePositions(s)
	sel := render.Selection{
		Handles:  handles,
		Rotation: rot,
		Size:     HandleSize,
	}
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, c := range corners {
		sel.Frame[i][0], sel.Frame[i][1] = f.toWorld(c[0]*f.w/2, c[1]*f.h/2)
	}
	sel.Anchor[0], sel.Anchor[1] = f.handle(HandleTop)
	return sel
}

// --- Handle-driven edits ---

// ResizeWithHandle drags handle h of a shape to the mouse position. The edges
// opposite the handle stay where they are on screen.
func (e *Editor) ResizeWithHandle(id ShapeID, h Handle, mx, my float64) error {
	if h == HandleRotation {
		return e.RotateTowards(id, mx, my)
	}
	if h == HandleNone {
		return nil
	}
	return e.mutate(id, func(s geometry.Shape) { resizeShape(s, h, mx, my) })
}

func resizeShape(s geometry.Shape, h Handle, mx, my float64) {
	if c, ok := s.(*geometry.Circle); ok {
		x, y := c.Position()
		c.SetRadius(math.Hypot(mx-x, my-y))
		return
	}

	f := frameOf(s)
	lx, ly := f.toLocal(mx, my)
	left, top, right, bottom := -f.w/2, -f.h/2, f.w/2, f.h/2
	u := handleUnit[h]
	switch u[0] {
	case -1:
		left = lx
	case 1:
		right = lx
	}
	switch u[1] {
	case -1:
		top = ly
	case 1:
		bottom = ly
	}
	nw, nh := right-left, bottom-top
	if nw <= 0 || nh <= 0 {
		return
	}
	ncx, ncy := f.toWorld((left+right)/2, (top+bottom)/2)

	switch sh := s.(type) {
	case *geometry.Rectangle:
		sh.SetFrame(ncx-nw/2, ncy-nh/2, nw, nh)
	case *geometry.Polygon:
		sx, sy := 1.0, 1.0
		if f.w > 0 {
			sx = nw / f.w
		}
		if f.h > 0 {
			sy = nh / f.h
		}
		sh.Scale(sx, sy)
		lb := sh.LocalBounds()
		bx, by := lb.Center()
		ox, oy := geometry.RotatePoint(bx, by, sh.Rotation())
		sh.Move(ncx-ox, ncy-oy)
	default:
		panic("editor: unknown shape type")
	}
}

// RotateTowards turns a shape a step towards the mouse, measured from the
// shape's center with 0 degrees pointing up.
func (e *Editor) RotateTowards(id ShapeID, mx, my float64) error {
	return e.mutate(id, func(s geometry.Shape) {
		cx, cy := s.Center()
		target := geometry.NormalizeDegrees(geometry.Degrees(math.Atan2(my-cy, mx-cx)) + 90)
		diff := target - s.Rotation()
		switch {
		case diff > 180:
			diff -= 360
		case diff < -180:
			diff += 360
		}
		s.SetRotation(s.Rotation() + diff*RotationSmoothing)
	})
}
