package render

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// Canvas is a Surface backed by a gogpu/gg raster context. gg shares one brush
// between fill and stroke, so the colors are applied right before each draw.
// The first drawing error is kept and reported by Err.
type Canvas struct {
	dc          *gg.Context
	fill        geometry.Color
	stroke      geometry.Color
	strokeWidth float64
	err         error
}

var _ Surface = (*Canvas)(nil)

// NewCanvas allocates a white canvas of the given pixel size.
func NewCanvas(width, height int) *Canvas {
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.White)
	return &Canvas{dc: dc, strokeWidth: 1}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.dc.Width() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.dc.Height() }

// Err returns the first error hit while drawing.
func (c *Canvas) Err() error { return c.err }

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.err != nil {
		return fmt.Errorf("draw: %w", c.err)
	}
	if err := c.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases the underlying context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}

func (c *Canvas) Push() { c.dc.Push() }
func (c *Canvas) Pop()  { c.dc.Pop() }

func (c *Canvas) Translate(x, y float64) { c.dc.Translate(x, y) }

func (c *Canvas) Rotate(degrees float64) {
	c.dc.Rotate(geometry.Radians(degrees))
}

func (c *Canvas) ClipRect(x, y, w, h float64) { c.dc.ClipRect(x, y, w, h) }

func (c *Canvas) SetFill(col geometry.Color) { c.fill = col }

func (c *Canvas) SetStroke(col geometry.Color, width float64) {
	c.stroke = col
	c.strokeWidth = width
}

func (c *Canvas) SetDash(lengths ...float64) { c.dc.SetDash(lengths...) }

func (c *Canvas) FillCircle(x, y, r float64) {
	c.dc.DrawCircle(x, y, r)
	c.doFill()
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.doFill()
}

func (c *Canvas) FillPolygon(xs, ys []float64) {
	if len(xs) == 0 {
		return
	}
	c.dc.MoveTo(xs[0], ys[0])
	for i := 1; i < len(xs); i++ {
		c.dc.LineTo(xs[i], ys[i])
	}
	c.dc.ClosePath()
	c.doFill()
}

func (c *Canvas) StrokeCircle(x, y, r float64) {
	c.dc.DrawCircle(x, y, r)
	c.doStroke()
}

func (c *Canvas) StrokeRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.doStroke()
}

func (c *Canvas) StrokeLine(x1, y1, x2, y2 float64) {
	c.dc.MoveTo(x1, y1)
	c.dc.LineTo(x2, y2)
	c.doStroke()
}

func (c *Canvas) doFill() {
	c.dc.SetHexColor(c.fill.Hex())
	if err := c.dc.Fill(); err != nil && c.err == nil {
		c.err = err
	}
}

func (c *Canvas) doStroke() {
	c.dc.SetHexColor(c.stroke.Hex())
	c.dc.SetLineWidth(c.strokeWidth)
	if err := c.dc.Stroke(); err != nil && c.err == nil {
		c.err = err
	}
}
