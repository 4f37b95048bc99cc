package geometry

// Rectangle keeps its unrotated top-left corner as the reference point and
// rotates about its center.
type Rectangle struct {
	base
	width, height float64
}

// NewRectangle creates a rectangle with top-left corner (x, y).
func NewRectangle(x, y, width, height float64, fill Color) *Rectangle {
	return &Rectangle{base: base{x: x, y: y, fill: fill}, width: width, height: height}
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) Width() float64  { return r.width }
func (r *Rectangle) Height() float64 { return r.height }

// SetFrame updates position and size together. It reports false and leaves the
// rectangle untouched unless both dimensions are positive.
func (r *Rectangle) SetFrame(x, y, width, height float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	r.x, r.y = x, y
	r.width, r.height = width, height
	return true
}

func (r *Rectangle) Center() (float64, float64) {
	return r.x + r.width/2, r.y + r.height/2
}

func (r *Rectangle) Contains(px, py float64) bool {
	if r.rotation == 0 {
		return px >= r.x && px <= r.x+r.width &&
			py >= r.y && py <= r.y+r.height
	}

	cx, cy := r.Center()
	lx, ly := RotatePoint(px-cx, py-cy, -r.rotation)
	hw, hh := r.width/2, r.height/2
	return lx >= -hw && lx <= hw && ly >= -hh && ly <= hh
}

func (r *Rectangle) Bounds() Rect {
	local := Rect{X: r.x, Y: r.y, Width: r.width, Height: r.height}
	if r.rotation == 0 {
		return local
	}
	cx, cy := r.Center()
	return RotateAbout(r.rotation, cx, cy).TransformRect(local)
}

func (r *Rectangle) Resize(factor float64) {
	if factor > 0 {
		r.width *= factor
		r.height *= factor
	}
}

func (r *Rectangle) Clone() Shape {
	cp := *r
	return &cp
}
