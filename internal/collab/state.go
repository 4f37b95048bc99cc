package collab

import (
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
	"github.com/inamate/inamate/editor-go/internal/typeid"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrShapeNotFound    = errors.New("shape not found")
	ErrShapeExists      = errors.New("shape already exists")
)

// DrawingState holds the authoritative canvas for a room. The editor is only
// touched with mu held.
type DrawingState struct {
	mu        sync.Mutex
	editor    *editor.Editor
	ids       map[string]editor.ShapeID
	names     map[editor.ShapeID]string
	serverSeq int64
	opLog     []Operation
	unsaved   bool
}

// NewDrawingState creates the state for a canvas holding shapes, bottom to top.
func NewDrawingState(width, height float64, shapes []geometry.Shape, opts ...editor.Option) *DrawingState {
	ds := &DrawingState{
		editor: editor.New(width, height, opts...),
		ids:    make(map[string]editor.ShapeID),
		names:  make(map[editor.ShapeID]string),
	}
	for _, id := range ds.editor.Load(shapes) {
		ds.bind(typeid.NewShapeID(), id)
	}
	return ds
}

func (ds *DrawingState) bind(name string, id editor.ShapeID) {
	ds.ids[name] = id
	ds.names[id] = name
}

func (ds *DrawingState) unbind(name string) {
	delete(ds.names, ds.ids[name])
	delete(ds.ids, name)
}

// Seq returns the last applied server sequence.
func (ds *DrawingState) Seq() int64 {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.serverSeq
}

// Sync returns the full canvas for a joining client.
func (ds *DrawingState) Sync() DocSyncPayload {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	w, h := ds.editor.Size()
	ids := ds.editor.IDs()
	recs := make([]ShapeRecord, 0, len(ids))
	for _, id := range ids {
		s, _ := ds.editor.Shape(id)
		recs = append(recs, ShapeRecord{ID: ds.names[id], Record: document.ToRecord(s)})
	}
	return DocSyncPayload{Width: w, Height: h, Shapes: recs, ServerSeq: ds.serverSeq}
}

// Snapshot returns copies of the shapes, bottom to top.
func (ds *DrawingState) Snapshot() []geometry.Shape {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.editor.Snapshot()
}

// Len returns the number of shapes.
func (ds *DrawingState) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.editor.Len()
}

// HitTest returns the public id of the topmost shape at (x, y). rebuilt
// reports whether the spatial index had to be rebuilt first.
func (ds *DrawingState) HitTest(x, y float64) (shapeID string, ok, rebuilt bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	before := ds.editor.Rebuilds()
	id, ok := ds.editor.HitTest(x, y)
	rebuilt = ds.editor.Rebuilds() != before
	if !ok {
		return "", false, rebuilt
	}
	return ds.names[id], true, rebuilt
}

// TakeUnsaved reports whether the canvas changed since the last call.
func (ds *DrawingState) TakeUnsaved() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	u := ds.unsaved
	ds.unsaved = false
	return u
}

// MarkUnsaved flags the canvas for the next save, after a failed attempt.
func (ds *DrawingState) MarkUnsaved() {
	ds.mu.Lock()
	ds.unsaved = true
	ds.mu.Unlock()
}

// ApplyOperation applies op and returns its server sequence. shape.create
// fills in op.ShapeID when the client left it empty.
func (ds *DrawingState) ApplyOperation(op *Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, err
	}

	ds.serverSeq++
	ds.opLog = append(ds.opLog, *op)
	ds.unsaved = true

	return ds.serverSeq, nil
}

func (ds *DrawingState) applyOperationLocked(op *Operation) error {
	switch op.Type {
	case OpShapeMove, OpShapeRotate, OpShapeResize, OpShapeHandle, OpShapeFill, OpShapeDelete, OpShapeFront:
	case OpShapeCreate:
		return ds.applyCreate(op)
	case OpCanvasClear:
		ds.editor.Clear()
		clear(ds.ids)
		clear(ds.names)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}

	id, ok := ds.ids[op.ShapeID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrShapeNotFound, op.ShapeID)
	}

	switch op.Type {
	case OpShapeMove:
		if op.X == nil || op.Y == nil {
			return fmt.Errorf("%w: move needs x and y", ErrInvalidOperation)
		}
		return ds.editor.Move(id, *op.X, *op.Y)

	case OpShapeRotate:
		switch {
		case op.Rotation != nil:
			return ds.editor.SetRotation(id, *op.Rotation)
		case op.Delta != nil:
			return ds.editor.Rotate(id, *op.Delta)
		}
		return fmt.Errorf("%w: rotate needs delta or rotation", ErrInvalidOperation)

	case OpShapeResize:
		if op.Factor == nil || *op.Factor <= 0 {
			return fmt.Errorf("%w: resize needs a positive factor", ErrInvalidOperation)
		}
		return ds.editor.Resize(id, *op.Factor)

	case OpShapeHandle:
		h, ok := editor.ParseHandle(op.Handle)
		if !ok || h == editor.HandleNone {
			return fmt.Errorf("%w: unknown handle %q", ErrInvalidOperation, op.Handle)
		}
		if op.X == nil || op.Y == nil {
			return fmt.Errorf("%w: handle needs x and y", ErrInvalidOperation)
		}
		return ds.editor.ResizeWithHandle(id, h, *op.X, *op.Y)

	case OpShapeFill:
		c, err := geometry.ParseColor(op.Fill)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
		return ds.editor.SetFill(id, c)

	case OpShapeDelete:
		if err := ds.editor.Remove(id); err != nil {
			return err
		}
		ds.unbind(op.ShapeID)
		return nil

	default: // OpShapeFront
		return ds.editor.BringToFront(id)
	}
}

func (ds *DrawingState) applyCreate(op *Operation) error {
	if op.Shape == nil {
		return fmt.Errorf("%w: create needs a shape", ErrInvalidOperation)
	}
	s, err := document.FromRecord(*op.Shape)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	if op.ShapeID == "" {
		op.ShapeID = typeid.NewShapeID()
	} else if err := typeid.Validate(op.ShapeID, typeid.PrefixShape); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	if _, exists := ds.ids[op.ShapeID]; exists {
		return fmt.Errorf("%w: %q", ErrShapeExists, op.ShapeID)
	}

	ds.bind(op.ShapeID, ds.editor.Add(s))
	return nil
}
