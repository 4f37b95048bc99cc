package document

import "github.com/inamate/inamate/editor-go/internal/geometry"

// SampleShapes returns a small drawing that uses every shape type.
func SampleShapes() []geometry.Shape {
	shapes := []geometry.Shape{
		geometry.DefaultRectangle(80, 80),
		geometry.DefaultCircle(300, 150),
		geometry.DefaultTriangle(500, 150),
	}

	tilted := geometry.NewRectangle(120, 300, 160, 40, geometry.Color{R: 0xF5, G: 0xA6, B: 0x23})
	tilted.SetRotation(30)
	shapes = append(shapes, tilted)

	if star, err := geometry.Star(380, 360, 5, 70, 30, geometry.Color{R: 0xE9, G: 0x45, B: 0x60}); err == nil {
		shapes = append(shapes, star)
	}
	if hex, err := geometry.RegularPolygon(600, 360, 6, 60, geometry.Color{R: 0x53, G: 0x34, B: 0x83}); err == nil {
		shapes = append(shapes, hex)
	}
	return shapes
}
