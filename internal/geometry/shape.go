package geometry

// Kind tags the variant held by a Shape.
type Kind int

const (
	KindCircle Kind = iota + 1
	KindRectangle
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "Circle"
	case KindRectangle:
		return "Rectangle"
	case KindPolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// ParseKind maps a type name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "Circle":
		return KindCircle, true
	case "Rectangle":
		return KindRectangle, true
	case "Polygon":
		return KindPolygon, true
	}
	return 0, false
}

// Shape is the closed set {*Circle, *Rectangle, *Polygon}. Callers switch on the
// concrete type; no other implementations exist outside this package.
type Shape interface {
	Kind() Kind
	Position() (x, y float64)
	Rotation() float64
	SetRotation(degrees float64)
	Fill() Color
	SetFill(c Color)

	// Contains reports whether the point lies inside the shape.
	Contains(x, y float64) bool
	// Bounds returns the axis-aligned box around the rotated shape.
	Bounds() Rect
	// Resize scales the shape. Non-positive factors are ignored.
	Resize(factor float64)
	// Move sets the reference point.
	Move(x, y float64)
	// Rotate adds delta degrees to the rotation.
	Rotate(delta float64)
	// Center returns the pivot used for interactive rotation.
	Center() (x, y float64)
	Clone() Shape

	sealed()
}

var (
	_ Shape = (*Circle)(nil)
	_ Shape = (*Rectangle)(nil)
	_ Shape = (*Polygon)(nil)
)

// base holds the state common to every variant.
type base struct {
	x, y     float64
	rotation float64
	fill     Color
}

func (b *base) Position() (float64, float64) { return b.x, b.y }
func (b *base) Rotation() float64            { return b.rotation }
func (b *base) Fill() Color                  { return b.fill }
func (b *base) SetFill(c Color)              { b.fill = c }
func (b *base) sealed()                      {}

func (b *base) SetRotation(degrees float64) {
	b.rotation = NormalizeDegrees(degrees)
}

func (b *base) Rotate(delta float64) {
	b.rotation = NormalizeDegrees(b.rotation + delta)
}

func (b *base) Move(x, y float64) {
	b.x = x
	b.y = y
}
