package editor

import (
	"math"
	"strings"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// Tool is the active pointer tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolCircle
	ToolRectangle
	ToolRegularPolygon
	ToolPolygon
)

var toolNames = [...]string{
	ToolSelect:         "select",
	ToolCircle:         "circle",
	ToolRectangle:      "rectangle",
	ToolRegularPolygon: "regular-polygon",
	ToolPolygon:        "polygon",
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// ParseTool maps a tool name back to a Tool.
func ParseTool(s string) (Tool, bool) {
	for i, name := range toolNames {
		if name == s {
			return Tool(i), true
		}
	}
	return ToolSelect, false
}

// Key is a keyboard command.
type Key int

const (
	KeyNone Key = iota
	KeyR
	KeyPlus
	KeyEquals
	KeyMinus
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyDelete
	KeyBackspace
	KeyEscape
)

// ParseKey maps a DOM-style key name to a Key.
func ParseKey(s string) Key {
	switch strings.ToLower(s) {
	case "r":
		return KeyR
	case "+", "plus", "add":
		return KeyPlus
	case "=", "equals", "equal":
		return KeyEquals
	case "-", "minus", "subtract":
		return KeyMinus
	case "arrowleft", "left":
		return KeyLeft
	case "arrowright", "right":
		return KeyRight
	case "arrowup", "up":
		return KeyUp
	case "arrowdown", "down":
		return KeyDown
	case "delete":
		return KeyDelete
	case "backspace":
		return KeyBackspace
	case "escape", "esc":
		return KeyEscape
	}
	return KeyNone
}

const (
	RotateStep = 15
	ResizeStep = 1.1
	MoveStep   = 5
	// MinCreateSize is the size a dragged-out shape must exceed to be kept.
	MinCreateSize = 2
)

type gestureKind int

const (
	gestureIdle gestureKind = iota
	gestureDrag
	gestureResize
	gestureCreate
)

type gesture struct {
	kind   gestureKind
	id     ShapeID
	handle Handle
	// drag: offset from the cursor to the reference point
	offX, offY float64
	// create: press position
	startX, startY float64
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools, abandoning any polygon under construction.
func (e *Editor) SetTool(t Tool) {
	e.cancelPolygon()
	e.gesture = gesture{}
	e.tool = t
}

// Color returns the color used for new shapes.
func (e *Editor) Color() geometry.Color { return e.color }

// SetColor sets the color for new shapes and recolors the selection.
func (e *Editor) SetColor(c geometry.Color) {
	e.color = c
	e.builder.SetFill(c)
	if id, ok := e.Selected(); ok {
		_ = e.SetFill(id, c)
	}
}

// PolygonSides returns the vertex count of the regular polygon tool.
func (e *Editor) PolygonSides() int { return e.sides }

// SetPolygonSides changes the vertex count of the regular polygon tool.
// Values below three are ignored.
func (e *Editor) SetPolygonSides(n int) {
	if n >= 3 {
		e.sides = n
	}
}

// Temp returns the shape being dragged out or the polygon preview, if any.
func (e *Editor) Temp() geometry.Shape { return e.temp }

// Press handles a pointer press.
func (e *Editor) Press(x, y float64) error {
	switch e.tool {
	case ToolSelect:
		e.throttle.Reset()
		if id, ok := e.Selected(); ok {
			s, _ := e.arena.Get(id)
			if h := HandleAt(s, x, y); h != HandleNone {
				e.gesture = gesture{kind: gestureResize, id: id, handle: h}
				return nil
			}
		}
		id, ok := e.SelectAt(x, y)
		if !ok {
			e.gesture = gesture{}
			return nil
		}
		s, _ := e.arena.Get(id)
		px, py := s.Position()
		e.gesture = gesture{kind: gestureDrag, id: id, offX: x - px, offY: y - py}

	case ToolCircle, ToolRectangle, ToolRegularPolygon:
		e.gesture = gesture{kind: gestureCreate, startX: x, startY: y}

	case ToolPolygon:
		closes, err := e.builder.Add(x, y)
		if err != nil {
			return err
		}
		if closes {
			return e.finishPolygon()
		}
		e.setTemp(e.builder.Shape())
	}
	return nil
}

// Drag handles pointer motion with the button held. Moves and resizes are
// throttled; Release applies the final position.
func (e *Editor) Drag(x, y float64) {
	switch e.gesture.kind {
	case gestureDrag:
		if e.throttle.Allow() {
			_ = e.Move(e.gesture.id, x-e.gesture.offX, y-e.gesture.offY)
		}
	case gestureResize:
		if e.throttle.Allow() {
			_ = e.ResizeWithHandle(e.gesture.id, e.gesture.handle, x, y)
		}
	case gestureCreate:
		e.setTemp(e.dragShape(e.gesture, x, y))
	default:
		if e.tool == ToolPolygon && e.builder.Active() {
			e.setTemp(e.builder.Preview(x, y))
		}
	}
}

// Release ends the current gesture. It returns the handle of a shape created
// by the gesture, if any.
func (e *Editor) Release(x, y float64) (ShapeID, bool) {
	g := e.gesture
	e.gesture = gesture{}
	switch g.kind {
	case gestureDrag:
		_ = e.Move(g.id, x-g.offX, y-g.offY)
	case gestureResize:
		if g.handle != HandleRotation {
			_ = e.ResizeWithHandle(g.id, g.handle, x, y)
		}
	case gestureCreate:
		s := e.dragShape(g, x, y)
		e.setTemp(nil)
		if s != nil && bigEnough(s, g, x, y) {
			return e.Add(s), true
		}
	}
	return ShapeID{}, false
}

// Key applies a keyboard command to the selection. It reports whether the key
// did anything.
func (e *Editor) Key(k Key, shift bool) bool {
	if k == KeyEscape {
		active := e.builder.Active()
		e.cancelPolygon()
		return active
	}

	id, ok := e.Selected()
	if !ok {
		return false
	}
	switch k {
	case KeyR:
		step := float64(RotateStep)
		if shift {
			step = -step
		}
		_ = e.Rotate(id, step)
	case KeyPlus, KeyEquals:
		_ = e.Resize(id, ResizeStep)
	case KeyMinus:
		_ = e.Resize(id, 1/ResizeStep)
	case KeyLeft:
		_ = e.MoveBy(id, -MoveStep, 0)
	case KeyRight:
		_ = e.MoveBy(id, MoveStep, 0)
	case KeyUp:
		_ = e.MoveBy(id, 0, -MoveStep)
	case KeyDown:
		_ = e.MoveBy(id, 0, MoveStep)
	case KeyDelete, KeyBackspace:
		_ = e.Remove(id)
	default:
		return false
	}
	return true
}

// FinishPolygon closes the polygon under construction, if it has enough vertices.
func (e *Editor) FinishPolygon() (ShapeID, error) {
	if err := e.finishPolygon(); err != nil {
		return ShapeID{}, err
	}
	return e.order[len(e.order)-1], nil
}

func (e *Editor) finishPolygon() error {
	p, err := e.builder.Close()
	if err != nil {
		return err
	}
	e.setTemp(nil)
	e.Add(p)
	return nil
}

func (e *Editor) cancelPolygon() {
	e.builder.Cancel()
	e.setTemp(nil)
}

// setTemp swaps the temporary shape, marking both old and new areas.
func (e *Editor) setTemp(s geometry.Shape) {
	if e.temp != nil {
		e.dirty.MarkRect(e.temp.Bounds())
	}
	e.temp = s
	if s != nil {
		e.dirty.MarkRect(s.Bounds())
	}
}

// dragShape builds the shape a create gesture would produce with the cursor at (x, y).
func (e *Editor) dragShape(g gesture, x, y float64) geometry.Shape {
	dx, dy := x-g.startX, y-g.startY
	switch e.tool {
	case ToolCircle:
		r := math.Hypot(dx, dy)
		if r <= 0 {
			return nil
		}
		return geometry.NewCircle(g.startX, g.startY, r, e.color)
	case ToolRectangle:
		w, h := math.Abs(dx), math.Abs(dy)
		if w <= 0 || h <= 0 {
			return nil
		}
		return geometry.NewRectangle(math.Min(g.startX, x), math.Min(g.startY, y), w, h, e.color)
	case ToolRegularPolygon:
		r := math.Hypot(dx, dy)
		if r <= 0 {
			return nil
		}
		p, err := geometry.RegularPolygon(g.startX, g.startY, e.sides, r, e.color)
		if err != nil {
			return nil
		}
		return p
	}
	return nil
}

func bigEnough(s geometry.Shape, g gesture, x, y float64) bool {
	switch sh := s.(type) {
	case *geometry.Rectangle:
		return sh.Width() > MinCreateSize && sh.Height() > MinCreateSize
	default:
		return math.Hypot(x-g.startX, y-g.startY) > MinCreateSize
	}
}
