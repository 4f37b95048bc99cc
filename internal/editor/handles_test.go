package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

func TestHandleAt(t *testing.T) {
	r := geometry.NewRectangle(100, 100, 100, 60, geometry.Green)

	tests := []struct {
		x, y float64
		want editor.Handle
	}{
		{100, 100, editor.HandleTopLeft},
		{102, 97, editor.HandleTopLeft},
		{103.5, 103.5, editor.HandleNone},
		{196.5, 163.5, editor.HandleNone},
		{150, 100, editor.HandleTop},
		{200, 100, editor.HandleTopRight},
		{100, 130, editor.HandleLeft},
		{200, 130, editor.HandleRight},
		{100, 160, editor.HandleBottomLeft},
		{150, 160, editor.HandleBottom},
		{200, 160, editor.HandleBottomRight},
		{150, 80, editor.HandleRotation},
		{154, 84, editor.HandleRotation},
		{155, 85, editor.HandleNone},
		{150, 130, editor.HandleNone},
		{105, 100, editor.HandleNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editor.HandleAt(r, tt.x, tt.y), "point (%v, %v)", tt.x, tt.y)
	}
}

func TestHandlePositionsRotated(t *testing.T) {
	r := geometry.NewRectangle(100, 100, 100, 60, geometry.Green)
	r.SetRotation(90)

	handles, rot := editor.HandlePositions(r)
	diff(t, [2]float64{180, 80}, handles[0])
	diff(t, [2]float64{120, 180}, handles[7])
	diff(t, [2]float64{200, 130}, rot)

	assert.Equal(t, editor.HandleTopLeft, editor.HandleAt(r, 180, 80))
	assert.Equal(t, editor.HandleRotation, editor.HandleAt(r, 200, 130))
}

func TestHandleFrames(t *testing.T) {
	c := geometry.NewCircle(50, 50, 20, geometry.Blue)
	handles, rot := editor.HandlePositions(c)
	diff(t, [2]float64{30, 30}, handles[0])
	diff(t, [2]float64{70, 70}, handles[7])
	diff(t, [2]float64{50, 10}, rot)

	p, err := geometry.NewPolygon(10, 10, []float64{0, 40, 0}, []float64{0, 0, 20}, geometry.Red)
	require.NoError(t, err)
	handles, _ = editor.HandlePositions(p)
	diff(t, [2]float64{10, 10}, handles[0])
	diff(t, [2]float64{50, 30}, handles[7])
}

func TestHandleNames(t *testing.T) {
	for h := editor.HandleNone; h <= editor.HandleRotation; h++ {
		got, ok := editor.ParseHandle(h.String())
		require.True(t, ok)
		assert.Equal(t, h, got)
	}
	_, ok := editor.ParseHandle("middle")
	assert.False(t, ok)
}

func rectFrame(t *testing.T, e *editor.Editor, id editor.ShapeID) [4]float64 {
	t.Helper()
	s, ok := e.Shape(id)
	require.True(t, ok)
	r := s.(*geometry.Rectangle)
	x, y := r.Position()
	return [4]float64{x, y, r.Width(), r.Height()}
}

func TestResizeRectangleWithHandle(t *testing.T) {
	tests := []struct {
		name   string
		handle editor.Handle
		mx, my float64
		want   [4]float64
	}{
		{"bottom-right", editor.HandleBottomRight, 250, 200, [4]float64{100, 100, 150, 100}},
		{"top-left", editor.HandleTopLeft, 50, 50, [4]float64{50, 50, 150, 110}},
		{"top", editor.HandleTop, 0, 90, [4]float64{100, 90, 100, 70}},
		{"left", editor.HandleLeft, 120, 0, [4]float64{120, 100, 80, 60}},
		{"right", editor.HandleRight, 300, 999, [4]float64{100, 100, 200, 60}},
		{"bottom-left", editor.HandleBottomLeft, 90, 170, [4]float64{90, 100, 110, 70}},
		{"inverted is ignored", editor.HandleBottomRight, 90, 90, [4]float64{100, 100, 100, 60}},
		{"zero width is ignored", editor.HandleRight, 100, 130, [4]float64{100, 100, 100, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := editor.New(800, 600)
			id := e.Add(geometry.NewRectangle(100, 100, 100, 60, geometry.Green))
			require.NoError(t, e.ResizeWithHandle(id, tt.handle, tt.mx, tt.my))
			diff(t, tt.want, rectFrame(t, e, id))
		})
	}
}

func TestResizeRotatedRectangleKeepsOppositeEdge(t *testing.T) {
	e := editor.New(800, 600)
	r := geometry.NewRectangle(100, 100, 100, 60, geometry.Green)
	r.SetRotation(90)
	id := e.Add(r)

	before, _ := editor.HandlePositions(r)
	// the right handle of a 90 degree rectangle points down
	require.NoError(t, e.ResizeWithHandle(id, editor.HandleRight, 150, 200))

	s, _ := e.Shape(id)
	rr := s.(*geometry.Rectangle)
	assert.InDelta(t, 120, rr.Width(), 1e-9)
	assert.InDelta(t, 60, rr.Height(), 1e-9)
	assert.InDelta(t, 90, rr.Rotation(), 1e-9)

	after, _ := editor.HandlePositions(rr)
	diff(t, before[3], after[3])
	diff(t, [2]float64{150, 200}, after[4])
}

func TestResizeRotatedRectangleCorner(t *testing.T) {
	e := editor.New(800, 600)
	r := geometry.NewRectangle(100, 100, 100, 60, geometry.Green)
	r.SetRotation(30)
	id := e.Add(r)

	before, _ := editor.HandlePositions(r)
	target := [2]float64{before[7][0] + 10, before[7][1] + 15}
	require.NoError(t, e.ResizeWithHandle(id, editor.HandleBottomRight, target[0], target[1]))

	s, _ := e.Shape(id)
	after, _ := editor.HandlePositions(s)
	diff(t, before[0], after[0])
}

func TestResizeCircleWithHandle(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewCircle(100, 100, 20, geometry.Blue))
	require.NoError(t, e.ResizeWithHandle(id, editor.HandleBottomRight, 130, 140))

	s, _ := e.Shape(id)
	assert.InDelta(t, 50, s.(*geometry.Circle).Radius(), 1e-9)

	// mouse on the center is ignored
	require.NoError(t, e.ResizeWithHandle(id, editor.HandleTop, 100, 100))
	assert.InDelta(t, 50, s.(*geometry.Circle).Radius(), 1e-9)
}

func TestResizePolygonWithHandle(t *testing.T) {
	e := editor.New(800, 600)
	p, err := geometry.NewPolygon(100, 100, []float64{0, 40, 0}, []float64{0, 0, 20}, geometry.Red)
	require.NoError(t, err)
	id := e.Add(p)

	require.NoError(t, e.ResizeWithHandle(id, editor.HandleRight, 180, 0))
	b, _ := e.Bounds(id)
	diff(t, geometry.Rect{X: 100, Y: 100, Width: 80, Height: 20}, b)

	require.NoError(t, e.ResizeWithHandle(id, editor.HandleTopLeft, 80, 90))
	b, _ = e.Bounds(id)
	diff(t, geometry.Rect{X: 80, Y: 90, Width: 100, Height: 30}, b)
}

func TestResizeRotatedPolygonKeepsOppositeEdge(t *testing.T) {
	e := editor.New(800, 600)
	p, err := geometry.NewPolygon(100, 100, []float64{0, 40, 40, 0}, []float64{0, 0, 20, 20}, geometry.Red)
	require.NoError(t, err)
	p.SetRotation(45)
	id := e.Add(p)

	before, _ := editor.HandlePositions(p)
	require.NoError(t, e.ResizeWithHandle(id, editor.HandleBottom, before[6][0]-10, before[6][1]+10))

	s, _ := e.Shape(id)
	after, _ := editor.HandlePositions(s)
	diff(t, before[1], after[1])
	assert.Equal(t, 45.0, s.Rotation())
}

func TestRotateTowards(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewRectangle(100, 100, 100, 60, geometry.Green))

	// center is (150, 130); straight right is 90 degrees
	require.NoError(t, e.RotateTowards(id, 250, 130))
	s, _ := e.Shape(id)
	assert.InDelta(t, 18, s.Rotation(), 1e-9)
	require.NoError(t, e.RotateTowards(id, 250, 130))
	assert.InDelta(t, 32.4, s.Rotation(), 1e-9)

	// takes the short way across 0
	require.NoError(t, e.SetRotation(id, 350))
	require.NoError(t, e.ResizeWithHandle(id, editor.HandleRotation, 150, 30))
	assert.InDelta(t, 352, s.Rotation(), 1e-9)
}
