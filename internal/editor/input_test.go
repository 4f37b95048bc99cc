package editor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestDragCreateShapes(t *testing.T) {
	tests := []struct {
		tool editor.Tool
		kind geometry.Kind
	}{
		{editor.ToolCircle, geometry.KindCircle},
		{editor.ToolRectangle, geometry.KindRectangle},
		{editor.ToolRegularPolygon, geometry.KindPolygon},
	}
	for _, tt := range tests {
		t.Run(tt.tool.String(), func(t *testing.T) {
			e := editor.New(800, 600)
			e.SetTool(tt.tool)
			e.SetColor(geometry.Red)

			require.NoError(t, e.Press(100, 100))
			e.Drag(130, 140)
			require.NotNil(t, e.Temp())

			id, ok := e.Release(130, 140)
			require.True(t, ok)
			assert.Nil(t, e.Temp())

			s, _ := e.Shape(id)
			assert.Equal(t, tt.kind, s.Kind())
			assert.Equal(t, geometry.Red, s.Fill())
		})
	}
}

func TestDragCreateRectangleNormalizesCorners(t *testing.T) {
	e := editor.New(800, 600)
	e.SetTool(editor.ToolRectangle)
	require.NoError(t, e.Press(100, 100))
	id, ok := e.Release(60, 70)
	require.True(t, ok)

	b, _ := e.Bounds(id)
	diff(t, geometry.Rect{X: 60, Y: 70, Width: 40, Height: 30}, b)
}

func TestDragCreateTooSmall(t *testing.T) {
	for _, tool := range []editor.Tool{editor.ToolCircle, editor.ToolRectangle, editor.ToolRegularPolygon} {
		e := editor.New(800, 600)
		e.SetTool(tool)
		require.NoError(t, e.Press(100, 100))
		_, ok := e.Release(101, 101)
		assert.False(t, ok, tool.String())
		assert.Equal(t, 0, e.Len())
	}

	// a thin rectangle is rejected even when the drag is long
	e := editor.New(800, 600)
	e.SetTool(editor.ToolRectangle)
	require.NoError(t, e.Press(100, 100))
	_, ok := e.Release(200, 101)
	assert.False(t, ok)
}

func TestRegularPolygonSides(t *testing.T) {
	e := editor.New(800, 600)
	e.SetTool(editor.ToolRegularPolygon)
	e.SetPolygonSides(7)
	e.SetPolygonSides(2)
	assert.Equal(t, 7, e.PolygonSides())

	require.NoError(t, e.Press(100, 100))
	id, ok := e.Release(150, 100)
	require.True(t, ok)
	s, _ := e.Shape(id)
	assert.Equal(t, 7, s.(*geometry.Polygon).NumPoints())
}

func TestSelectDragIsThrottled(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e := editor.New(800, 600, editor.WithClock(clock.Now))
	id := e.Add(geometry.NewCircle(100, 100, 50, geometry.Blue))

	position := func() float64 {
		s, _ := e.Shape(id)
		x, _ := s.Position()
		return x
	}

	require.NoError(t, e.Press(100, 100))
	sel, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, id, sel)

	e.Drag(110, 100)
	assert.Equal(t, 110.0, position())

	clock.Advance(5 * time.Millisecond)
	e.Drag(120, 100)
	assert.Equal(t, 110.0, position())

	clock.Advance(20 * time.Millisecond)
	e.Drag(130, 100)
	assert.Equal(t, 130.0, position())

	e.Release(140, 100)
	assert.Equal(t, 140.0, position())
}

func TestSelectDragKeepsGrabOffset(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewRectangle(100, 100, 100, 60, geometry.Green))

	require.NoError(t, e.Press(120, 110))
	e.Release(220, 210)
	s, _ := e.Shape(id)
	x, y := s.Position()
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 200.0, y)
}

func TestPressOnHandleResizes(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewRectangle(100, 100, 100, 60, geometry.Green))
	require.NoError(t, e.Select(id))

	require.NoError(t, e.Press(200, 160))
	e.Release(250, 200)
	diff(t, [4]float64{100, 100, 150, 100}, rectFrame(t, e, id))
}

func TestPressOnEmptyCanvasDeselects(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewCircle(100, 100, 20, geometry.Blue))
	require.NoError(t, e.Select(id))

	require.NoError(t, e.Press(500, 500))
	_, ok := e.Selected()
	assert.False(t, ok)
	e.Drag(10, 10)
	e.Release(10, 10)
	b, _ := e.Bounds(id)
	diff(t, geometry.Rect{X: 80, Y: 80, Width: 40, Height: 40}, b)
}

func TestKeys(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewRectangle(100, 100, 100, 50, geometry.Green))

	assert.False(t, e.Key(editor.KeyR, false), "no selection")
	require.NoError(t, e.Select(id))

	s, _ := e.Shape(id)
	r := s.(*geometry.Rectangle)

	require.True(t, e.Key(editor.KeyR, false))
	assert.InDelta(t, 15, r.Rotation(), 1e-9)
	require.True(t, e.Key(editor.KeyR, true))
	require.True(t, e.Key(editor.KeyR, true))
	assert.InDelta(t, 345, r.Rotation(), 1e-9)

	require.True(t, e.Key(editor.KeyPlus, false))
	assert.InDelta(t, 110, r.Width(), 1e-9)
	require.True(t, e.Key(editor.KeyMinus, false))
	assert.InDelta(t, 100, r.Width(), 1e-9)
	require.True(t, e.Key(editor.KeyEquals, false))
	assert.InDelta(t, 55, r.Height(), 1e-9)

	require.True(t, e.Key(editor.KeyLeft, false))
	require.True(t, e.Key(editor.KeyDown, false))
	x, y := r.Position()
	assert.Equal(t, 95.0, x)
	assert.Equal(t, 105.0, y)

	assert.False(t, e.Key(editor.KeyNone, false))

	require.True(t, e.Key(editor.KeyBackspace, false))
	assert.Equal(t, 0, e.Len())
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, editor.KeyR, editor.ParseKey("R"))
	assert.Equal(t, editor.KeyLeft, editor.ParseKey("ArrowLeft"))
	assert.Equal(t, editor.KeyEquals, editor.ParseKey("="))
	assert.Equal(t, editor.KeyDelete, editor.ParseKey("Delete"))
	assert.Equal(t, editor.KeyNone, editor.ParseKey("q"))
}

func TestSetColorRecolorsSelection(t *testing.T) {
	e := editor.New(800, 600)
	id := e.Add(geometry.NewCircle(100, 100, 20, geometry.Blue))
	require.NoError(t, e.Select(id))

	e.SetColor(geometry.Red)
	s, _ := e.Shape(id)
	assert.Equal(t, geometry.Red, s.Fill())
	assert.Equal(t, geometry.Red, e.Color())
}

func TestPolygonTool(t *testing.T) {
	e := editor.New(800, 600)
	e.SetTool(editor.ToolPolygon)

	require.NoError(t, e.Press(100, 100))
	require.NotNil(t, e.Temp())
	require.NoError(t, e.Press(200, 100))
	e.Drag(200, 200)
	assert.Equal(t, 3, e.Temp().(*geometry.Polygon).NumPoints())
	require.NoError(t, e.Press(200, 200))

	// close by clicking near the first vertex
	require.NoError(t, e.Press(104, 103))
	require.Equal(t, 1, e.Len())
	assert.Nil(t, e.Temp())

	s, _ := e.Shape(e.IDs()[0])
	p := s.(*geometry.Polygon)
	assert.Equal(t, 3, p.NumPoints())
	x, y := p.Position()
	assert.Equal(t, [2]float64{100, 100}, [2]float64{x, y})
}

func TestPolygonToolRejectsCrossing(t *testing.T) {
	e := editor.New(800, 600)
	e.SetTool(editor.ToolPolygon)
	require.NoError(t, e.Press(0, 0))
	require.NoError(t, e.Press(100, 100))
	require.NoError(t, e.Press(100, 0))
	assert.ErrorIs(t, e.Press(0, 100), editor.ErrSegmentCrosses)

	_, err := e.FinishPolygon()
	require.NoError(t, err)
	assert.Equal(t, 1, e.Len())
}

func TestPolygonToolCancel(t *testing.T) {
	e := editor.New(800, 600)
	e.SetTool(editor.ToolPolygon)
	require.NoError(t, e.Press(0, 0))
	require.NoError(t, e.Press(100, 0))

	_, err := e.FinishPolygon()
	assert.ErrorIs(t, err, geometry.ErrTooFewPoints)

	assert.True(t, e.Key(editor.KeyEscape, false))
	assert.Nil(t, e.Temp())
	assert.False(t, e.Key(editor.KeyEscape, false))

	require.NoError(t, e.Press(0, 0))
	e.SetTool(editor.ToolSelect)
	assert.Nil(t, e.Temp())
	assert.Equal(t, 0, e.Len())
}

func TestParseTool(t *testing.T) {
	for tool := editor.ToolSelect; tool <= editor.ToolPolygon; tool++ {
		got, ok := editor.ParseTool(tool.String())
		require.True(t, ok)
		assert.Equal(t, tool, got)
	}
	_, ok := editor.ParseTool("lasso")
	assert.False(t, ok)
}
