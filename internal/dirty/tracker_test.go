package dirty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

func TestMarkAddsMarginAndClamps(t *testing.T) {
	tr := NewTracker(200, 100)

	tr.Mark(10, 10, 20, 20)
	r, ok := tr.Region()
	require.True(t, ok)
	require.Equal(t, Region{Left: 5, Top: 5, Right: 25, Bottom: 25}, r)

	tr.Reset()
	tr.Mark(-50, 2, 198, 120)
	r, _ = tr.Region()
	require.Equal(t, Region{Left: 0, Top: 0, Right: 200, Bottom: 100}, r)
}

func TestMarkUnions(t *testing.T) {
	tr := NewTracker(500, 500)
	tr.Mark(10, 10, 20, 20)
	tr.MarkRect(geometry.Rect{X: 100, Y: 200, Width: 10, Height: 10})

	r, _ := tr.Region()
	require.Equal(t, Region{Left: 5, Top: 5, Right: 115, Bottom: 215}, r)
}

func TestMarkIgnoresOffCanvas(t *testing.T) {
	tr := NewTracker(100, 100)
	tr.Mark(300, 300, 400, 400)
	tr.Mark(-100, -100, -20, -20)
	tr.Mark(50, 50, 40, 60)

	_, ok := tr.Region()
	require.False(t, ok)
}

func TestTake(t *testing.T) {
	tr := NewTracker(300, 200)

	require.Equal(t, Region{Right: 300, Bottom: 200}, tr.Take(), "clean canvas repaints fully")

	tr.Mark(50, 50, 60, 60)
	require.Equal(t, Region{Left: 45, Top: 45, Right: 65, Bottom: 65}, tr.Take())

	_, ok := tr.Region()
	require.False(t, ok)
}

func TestResizeMarksAll(t *testing.T) {
	tr := NewTracker(10, 10)
	tr.Resize(40, 30)
	r, ok := tr.Region()
	require.True(t, ok)
	require.Equal(t, Region{Right: 40, Bottom: 30}, r)
	require.Equal(t, 1200.0, r.Area())
}
