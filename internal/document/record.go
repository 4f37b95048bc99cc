// Package document converts shapes to and from their flat JSON records.
package document

import (
	"errors"
	"fmt"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

var (
	ErrUnknownType = errors.New("unknown shape type")
	ErrBadSize     = errors.New("shape size must be positive")
)

// Record is the stored form of one shape. Only the fields for its type are set.
type Record struct {
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Rotation  float64 `json:"rotation"`
	FillColor string  `json:"fillColor"`

	// Circle
	Radius float64 `json:"radius,omitempty"`

	// Rectangle
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Polygon
	PointsX   []float64 `json:"pointsX,omitempty"`
	PointsY   []float64 `json:"pointsY,omitempty"`
	NumPoints int       `json:"numPoints,omitempty"`
}

// RecordError is a failure confined to one record of a document.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ToRecord flattens a shape.
func ToRecord(s geometry.Shape) Record {
	x, y := s.Position()
	rec := Record{
		Type:      s.Kind().String(),
		X:         x,
		Y:         y,
		Rotation:  s.Rotation(),
		FillColor: s.Fill().Hex(),
	}
	switch sh := s.(type) {
	case *geometry.Circle:
		rec.Radius = sh.Radius()
	case *geometry.Rectangle:
		rec.Width = sh.Width()
		rec.Height = sh.Height()
	case *geometry.Polygon:
		rec.PointsX, rec.PointsY = sh.Points()
		rec.NumPoints = sh.NumPoints()
	default:
		panic("document: unknown shape type")
	}
	return rec
}

// FromRecord rebuilds a shape from its record.
func FromRecord(rec Record) (geometry.Shape, error) {
	kind, ok := geometry.ParseKind(rec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
	}
	fill, err := geometry.ParseColor(rec.FillColor)
	if err != nil {
		return nil, err
	}

	var s geometry.Shape
	switch kind {
	case geometry.KindCircle:
		if rec.Radius <= 0 {
			return nil, fmt.Errorf("circle radius %v: %w", rec.Radius, ErrBadSize)
		}
		s = geometry.NewCircle(rec.X, rec.Y, rec.Radius, fill)
	case geometry.KindRectangle:
		if rec.Width <= 0 || rec.Height <= 0 {
			return nil, fmt.Errorf("rectangle %vx%v: %w", rec.Width, rec.Height, ErrBadSize)
		}
		s = geometry.NewRectangle(rec.X, rec.Y, rec.Width, rec.Height, fill)
	case geometry.KindPolygon:
		if rec.NumPoints != 0 && rec.NumPoints != len(rec.PointsX) {
			return nil, fmt.Errorf("numPoints %d with %d coordinates: %w",
				rec.NumPoints, len(rec.PointsX), geometry.ErrPointMismatch)
		}
		p, err := geometry.NewPolygon(rec.X, rec.Y, rec.PointsX, rec.PointsY, fill)
		if err != nil {
			return nil, err
		}
		// Fewer than three points only exist as an in-progress preview.
		if p.NumPoints() < 3 {
			return nil, fmt.Errorf("polygon with %d points: %w", p.NumPoints(), geometry.ErrTooFewPoints)
		}
		s = p
	}
	s.SetRotation(rec.Rotation)
	return s, nil
}

// ToRecords flattens shapes in order.
func ToRecords(shapes []geometry.Shape) []Record {
	recs := make([]Record, len(shapes))
	for i, s := range shapes {
		recs[i] = ToRecord(s)
	}
	return recs
}

// FromRecords rebuilds every valid record. Failures are returned as
// *RecordError values alongside the shapes that did load.
func FromRecords(recs []Record) ([]geometry.Shape, []error) {
	shapes := make([]geometry.Shape, 0, len(recs))
	var errs []error
	for i, rec := range recs {
		s, err := FromRecord(rec)
		if err != nil {
			errs = append(errs, &RecordError{Index: i, Err: err})
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, errs
}
