package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

func ptr(v float64) *float64 { return &v }

func circleRecord(x, y, r float64) *document.Record {
	rec := document.ToRecord(geometry.NewCircle(x, y, r, geometry.Blue))
	return &rec
}

func TestDrawingStateSync(t *testing.T) {
	ds := NewDrawingState(640, 480, []geometry.Shape{
		geometry.NewCircle(10, 10, 5, geometry.Blue),
		geometry.NewRectangle(0, 0, 20, 20, geometry.Green),
	})

	doc := ds.Sync()
	assert.Equal(t, 640.0, doc.Width)
	assert.Equal(t, 480.0, doc.Height)
	require.Len(t, doc.Shapes, 2)
	assert.Equal(t, "Circle", doc.Shapes[0].Type)
	assert.Equal(t, "Rectangle", doc.Shapes[1].Type)
	assert.Contains(t, doc.Shapes[0].ID, "shape_")
	assert.NotEqual(t, doc.Shapes[0].ID, doc.Shapes[1].ID)
	assert.False(t, ds.TakeUnsaved())
}

func TestApplyCreateAssignsID(t *testing.T) {
	ds := NewDrawingState(640, 480, nil)

	op := &Operation{ID: "op1", Type: OpShapeCreate, Shape: circleRecord(50, 50, 10)}
	seq, err := ds.ApplyOperation(op)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	require.NotEmpty(t, op.ShapeID)

	doc := ds.Sync()
	require.Len(t, doc.Shapes, 1)
	assert.Equal(t, op.ShapeID, doc.Shapes[0].ID)
	assert.Equal(t, int64(1), doc.ServerSeq)
	assert.True(t, ds.TakeUnsaved())
	assert.False(t, ds.TakeUnsaved())

	// the same id twice is refused
	dup := &Operation{Type: OpShapeCreate, ShapeID: op.ShapeID, Shape: circleRecord(1, 1, 1)}
	_, err = ds.ApplyOperation(dup)
	assert.ErrorIs(t, err, ErrShapeExists)

	bad := &Operation{Type: OpShapeCreate, ShapeID: "drw_nope", Shape: circleRecord(1, 1, 1)}
	_, err = ds.ApplyOperation(bad)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestApplyShapeOperations(t *testing.T) {
	ds := NewDrawingState(640, 480, nil)
	rect := document.ToRecord(geometry.NewRectangle(100, 100, 100, 60, geometry.Green))
	create := &Operation{Type: OpShapeCreate, Shape: &rect}
	_, err := ds.ApplyOperation(create)
	require.NoError(t, err)
	id := create.ShapeID

	apply := func(op Operation) {
		t.Helper()
		op.ShapeID = id
		_, err := ds.ApplyOperation(&op)
		require.NoError(t, err)
	}
	current := func() document.Record {
		t.Helper()
		shapes := ds.Sync().Shapes
		require.Len(t, shapes, 1)
		return shapes[0].Record
	}

	apply(Operation{Type: OpShapeMove, X: ptr(10), Y: ptr(20)})
	assert.Equal(t, 10.0, current().X)
	assert.Equal(t, 20.0, current().Y)

	apply(Operation{Type: OpShapeHandle, Handle: "bottom-right", X: ptr(160), Y: ptr(100)})
	assert.Equal(t, 150.0, current().Width)
	assert.Equal(t, 80.0, current().Height)

	apply(Operation{Type: OpShapeResize, Factor: ptr(2)})
	assert.Equal(t, 300.0, current().Width)

	apply(Operation{Type: OpShapeRotate, Delta: ptr(-30)})
	assert.Equal(t, 330.0, current().Rotation)
	apply(Operation{Type: OpShapeRotate, Rotation: ptr(45)})
	assert.Equal(t, 45.0, current().Rotation)

	apply(Operation{Type: OpShapeFill, Fill: "#ff8800"})
	assert.Equal(t, "#FF8800", current().FillColor)

	assert.Equal(t, int64(7), ds.Seq())
}

func TestApplyRejectsBadOperations(t *testing.T) {
	ds := NewDrawingState(640, 480, nil)
	create := &Operation{Type: OpShapeCreate, Shape: circleRecord(50, 50, 10)}
	_, err := ds.ApplyOperation(create)
	require.NoError(t, err)
	id := create.ShapeID

	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"unknown type", Operation{Type: "shape.explode", ShapeID: id}, ErrUnknownOperation},
		{"unknown shape", Operation{Type: OpShapeMove, ShapeID: "shape_missing", X: ptr(1), Y: ptr(1)}, ErrShapeNotFound},
		{"move without y", Operation{Type: OpShapeMove, ShapeID: id, X: ptr(1)}, ErrInvalidOperation},
		{"rotate without angle", Operation{Type: OpShapeRotate, ShapeID: id}, ErrInvalidOperation},
		{"zero factor", Operation{Type: OpShapeResize, ShapeID: id, Factor: ptr(0)}, ErrInvalidOperation},
		{"bad handle", Operation{Type: OpShapeHandle, ShapeID: id, Handle: "middle", X: ptr(1), Y: ptr(1)}, ErrInvalidOperation},
		{"bad color", Operation{Type: OpShapeFill, ShapeID: id, Fill: "blue"}, ErrInvalidOperation},
		{"create without shape", Operation{Type: OpShapeCreate}, ErrInvalidOperation},
		{"create unknown type", Operation{Type: OpShapeCreate, Shape: &document.Record{Type: "Blob", FillColor: "#000000"}}, ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := tt.op
			_, err := ds.ApplyOperation(&op)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(1), ds.Seq(), "rejected operations do not advance the sequence")
}

func TestApplyCreateRejectsPreviewPolygons(t *testing.T) {
	ds := NewDrawingState(640, 480, nil)

	for _, xs := range [][]float64{{10}, {10, 60}} {
		op := &Operation{Type: OpShapeCreate, Shape: &document.Record{
			Type: "Polygon", FillColor: "#000000",
			PointsX: xs, PointsY: xs, NumPoints: len(xs),
		}}
		_, err := ds.ApplyOperation(op)
		assert.ErrorIs(t, err, ErrInvalidOperation)
		assert.ErrorIs(t, err, geometry.ErrTooFewPoints)
	}
	assert.Zero(t, ds.Len())
	assert.Empty(t, ds.Snapshot())

	tri := &Operation{Type: OpShapeCreate, Shape: &document.Record{
		Type: "Polygon", FillColor: "#000000",
		PointsX: []float64{10, 60, 10}, PointsY: []float64{10, 10, 60}, NumPoints: 3,
	}}
	_, err := ds.ApplyOperation(tri)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestApplyDeleteFrontAndClear(t *testing.T) {
	ds := NewDrawingState(640, 480, nil)
	var ids []string
	for i := range 3 {
		op := &Operation{Type: OpShapeCreate, Shape: circleRecord(100, 100, float64(10+i))}
		_, err := ds.ApplyOperation(op)
		require.NoError(t, err)
		ids = append(ids, op.ShapeID)
	}

	top, ok, _ := ds.HitTest(100, 100)
	require.True(t, ok)
	assert.Equal(t, ids[2], top)

	_, err := ds.ApplyOperation(&Operation{Type: OpShapeFront, ShapeID: ids[0]})
	require.NoError(t, err)
	top, _, _ = ds.HitTest(100, 100)
	assert.Equal(t, ids[0], top)

	_, err = ds.ApplyOperation(&Operation{Type: OpShapeDelete, ShapeID: ids[0]})
	require.NoError(t, err)
	top, _, _ = ds.HitTest(100, 100)
	assert.Equal(t, ids[2], top)
	_, err = ds.ApplyOperation(&Operation{Type: OpShapeDelete, ShapeID: ids[0]})
	assert.ErrorIs(t, err, ErrShapeNotFound)

	_, err = ds.ApplyOperation(&Operation{Type: OpCanvasClear})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	_, ok, _ = ds.HitTest(100, 100)
	assert.False(t, ok)
}

func TestHitTestReportsRebuilds(t *testing.T) {
	ds := NewDrawingState(640, 480, []geometry.Shape{geometry.NewCircle(10, 10, 5, geometry.Blue)})

	_, ok, rebuilt := ds.HitTest(10, 10)
	assert.True(t, ok)
	assert.True(t, rebuilt)

	_, _, rebuilt = ds.HitTest(10, 10)
	assert.False(t, rebuilt)
}
