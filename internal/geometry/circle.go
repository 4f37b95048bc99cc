package geometry

// Circle is centered on its reference point.
type Circle struct {
	base
	radius float64
}

// NewCircle creates a circle centered at (x, y).
func NewCircle(x, y, radius float64, fill Color) *Circle {
	return &Circle{base: base{x: x, y: y, fill: fill}, radius: radius}
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Radius() float64 { return c.radius }

// SetRadius ignores non-positive values.
func (c *Circle) SetRadius(r float64) {
	if r > 0 {
		c.radius = r
	}
}

func (c *Circle) Contains(px, py float64) bool {
	dx, dy := px-c.x, py-c.y
	if c.rotation != 0 {
		dx, dy = RotatePoint(dx, dy, -c.rotation)
	}
	return dx*dx+dy*dy <= c.radius*c.radius
}

func (c *Circle) Bounds() Rect {
	return RectFromEdges(c.x-c.radius, c.y-c.radius, c.x+c.radius, c.y+c.radius)
}

func (c *Circle) Resize(factor float64) {
	if factor > 0 {
		c.radius *= factor
	}
}

func (c *Circle) Center() (float64, float64) { return c.x, c.y }

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}
