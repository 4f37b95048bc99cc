package render

import (
	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// PathCommand represents a single path segment.
// Format follows Canvas2D: ["M", x, y], ["L", x, y], ["Z"],
// ["R", x, y, w, h] for rectangles and ["A", x, y, r] for full circles.
type PathCommand []any

// DrawCommand represents a single drawing operation for a frontend to execute
// on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "save", "restore", "clip", "fill", "stroke"
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for fill/stroke/clip
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Stroke dash pattern
}

// Recorder is a Surface that records draw commands instead of rasterizing.
type Recorder struct {
	commands    []DrawCommand
	matrix      geometry.Matrix2D
	stack       []geometry.Matrix2D
	fill        geometry.Color
	stroke      geometry.Color
	strokeWidth float64
	dash        []float64
}

var _ Surface = (*Recorder)(nil)

// NewRecorder returns an empty recorder with an identity transform.
func NewRecorder() *Recorder {
	return &Recorder{matrix: geometry.Identity(), strokeWidth: 1}
}

// Commands returns the recorded commands in painter's order.
func (r *Recorder) Commands() []DrawCommand { return r.commands }

// Reset drops recorded commands and restores the initial state.
func (r *Recorder) Reset() {
	*r = *NewRecorder()
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() (string, error) {
	if len(r.commands) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(r.commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

func (r *Recorder) Push() {
	r.stack = append(r.stack, r.matrix)
	r.commands = append(r.commands, DrawCommand{Op: "save"})
}

func (r *Recorder) Pop() {
	if len(r.stack) == 0 {
		return
	}
	r.matrix = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.commands = append(r.commands, DrawCommand{Op: "restore"})
}

func (r *Recorder) Translate(x, y float64) {
	r.matrix = r.matrix.Multiply(geometry.Translate(x, y))
}

func (r *Recorder) Rotate(degrees float64) {
	r.matrix = r.matrix.Multiply(geometry.RotateDegrees(degrees))
}

func (r *Recorder) ClipRect(x, y, w, h float64) {
	r.emit("clip", PathCommand{"R", x, y, w, h})
}

func (r *Recorder) SetFill(c geometry.Color) { r.fill = c }

func (r *Recorder) SetStroke(c geometry.Color, width float64) {
	r.stroke = c
	r.strokeWidth = width
}

func (r *Recorder) SetDash(lengths ...float64) {
	r.dash = append([]float64(nil), lengths...)
}

func (r *Recorder) FillCircle(x, y, radius float64) {
	r.emit("fill", PathCommand{"A", x, y, radius})
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.emit("fill", PathCommand{"R", x, y, w, h})
}

func (r *Recorder) FillPolygon(xs, ys []float64) {
	r.emit("fill", polygonPath(xs, ys)...)
}

func (r *Recorder) StrokeCircle(x, y, radius float64) {
	r.emit("stroke", PathCommand{"A", x, y, radius})
}

func (r *Recorder) StrokeRect(x, y, w, h float64) {
	r.emit("stroke", PathCommand{"R", x, y, w, h})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2 float64) {
	r.emit("stroke", PathCommand{"M", x1, y1}, PathCommand{"L", x2, y2})
}

func (r *Recorder) emit(op string, path ...PathCommand) {
	cmd := DrawCommand{Op: op, Path: path}
	if !r.matrix.IsIdentity() {
		cmd.Transform = r.matrix.ToSlice()
	}
	switch op {
	case "fill":
		cmd.Fill = r.fill.Hex()
	case "stroke":
		cmd.Stroke = r.stroke.Hex()
		cmd.StrokeWidth = r.strokeWidth
		if len(r.dash) > 0 {
			cmd.Dash = append([]float64(nil), r.dash...)
		}
	}
	r.commands = append(r.commands, cmd)
}

func polygonPath(xs, ys []float64) []PathCommand {
	path := make([]PathCommand, 0, len(xs)+1)
	for i := range xs {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, xs[i], ys[i]})
	}
	return append(path, PathCommand{"Z"})
}
