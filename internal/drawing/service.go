package drawing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
	"github.com/inamate/inamate/editor-go/internal/render"
	"github.com/inamate/inamate/editor-go/internal/typeid"
)

// PlaygroundID is the shared drawing anyone may open without an account. It
// is never stored.
const PlaygroundID = "playground"

const maxCanvasSide = 8192

var (
	ErrNotFound      = errors.New("drawing not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidSize   = errors.New("invalid canvas size")
	ErrInvalidShapes = errors.New("invalid shapes")
	ErrDrawingOpen   = errors.New("drawing is open for live editing")
)

// LiveFunc returns the current shapes of a drawing that is being edited
// live, if it is.
type LiveFunc func(drawingID string) ([]geometry.Shape, bool)

type Service struct {
	store         Store
	editorOpts    []editor.Option
	width, height float64
	live          LiveFunc
}

type ServiceOption func(*Service)

// WithEditorOptions configures the editors used for rendering and hit tests.
func WithEditorOptions(opts ...editor.Option) ServiceOption {
	return func(s *Service) { s.editorOpts = opts }
}

// WithDefaultSize sets the canvas size of new drawings and the playground.
func WithDefaultSize(width, height float64) ServiceOption {
	return func(s *Service) { s.width, s.height = width, height }
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, width: 800, height: 600}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLive lets reads see the state of drawings open in a collaboration room
// instead of their last saved snapshot.
func (s *Service) SetLive(fn LiveFunc) { s.live = fn }

// CreateParams describes a new drawing. Zero sizes use the service default.
type CreateParams struct {
	Name   string
	Width  float64
	Height float64
	Sample bool
}

func (s *Service) Create(ctx context.Context, ownerID string, p CreateParams) (*Drawing, error) {
	if p.Width == 0 {
		p.Width = s.width
	}
	if p.Height == 0 {
		p.Height = s.height
	}
	if !validSize(p.Width, p.Height) {
		return nil, fmt.Errorf("%w: %gx%g", ErrInvalidSize, p.Width, p.Height)
	}

	shapes := []document.Record{}
	if p.Sample {
		shapes = document.ToRecords(document.SampleShapes())
	}

	d := &Drawing{
		ID:      typeid.NewDrawingID(),
		Name:    p.Name,
		OwnerID: ownerID,
		Width:   p.Width,
		Height:  p.Height,
	}
	if err := s.store.CreateDrawing(ctx, d, shapes); err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}
	return d, nil
}

// Get returns a drawing owned by userID.
func (s *Service) Get(ctx context.Context, drawingID, userID string) (*Drawing, error) {
	d, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	if d.OwnerID != userID {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Drawing, error) {
	drawings, err := s.store.ListDrawings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	return drawings, nil
}

func (s *Service) Delete(ctx context.Context, drawingID, userID string) error {
	if _, err := s.Get(ctx, drawingID, userID); err != nil {
		return err
	}
	return s.store.DeleteDrawing(ctx, drawingID)
}

// Shapes returns the latest saved snapshot.
func (s *Service) Shapes(ctx context.Context, drawingID, userID string) (*Snapshot, error) {
	if _, err := s.Get(ctx, drawingID, userID); err != nil {
		return nil, err
	}
	snap, err := s.store.LatestSnapshot(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

// ReplaceShapes validates recs and stores them as a new snapshot. Drawings
// open in a live session are refused so the room's next save does not
// silently discard the write.
func (s *Service) ReplaceShapes(ctx context.Context, drawingID, userID string, recs []document.Record) (*Snapshot, error) {
	if _, err := s.Get(ctx, drawingID, userID); err != nil {
		return nil, err
	}
	if s.live != nil {
		if _, open := s.live(drawingID); open {
			return nil, ErrDrawingOpen
		}
	}

	shapes, errs := document.FromRecords(recs)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShapes, errors.Join(errs...))
	}
	snap, err := s.store.CreateSnapshot(ctx, drawingID, document.ToRecords(shapes))
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

// Render draws the current canvas and writes it to w as PNG.
func (s *Service) Render(ctx context.Context, drawingID, userID string, w io.Writer) error {
	ed, err := s.open(ctx, drawingID, userID)
	if err != nil {
		return err
	}
	return s.renderEditor(ed, w)
}

// RenderShapes draws shapes on a blank canvas of the given size.
func (s *Service) RenderShapes(shapes []geometry.Shape, width, height float64, w io.Writer) error {
	if !validSize(width, height) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidSize, width, height)
	}
	ed := editor.New(width, height, s.editorOpts...)
	ed.Load(shapes)
	return s.renderEditor(ed, w)
}

func (s *Service) renderEditor(ed *editor.Editor, w io.Writer) error {
	width, height := ed.Size()
	canvas := render.NewCanvas(int(math.Ceil(width)), int(math.Ceil(height)))
	defer canvas.Close()

	region := ed.Redraw(canvas)
	redrawnArea.Observe(region.Area())
	if err := canvas.EncodePNG(w); err != nil {
		rendersTotal.WithLabelValues(resultError).Inc()
		return fmt.Errorf("render: %w", err)
	}
	rendersTotal.WithLabelValues(resultOK).Inc()
	return nil
}

// Hit is the result of a hit test against a drawing.
type Hit struct {
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
	Hit   bool             `json:"hit"`
	Index int              `json:"index"` // z-order position, -1 on a miss
	Shape *document.Record `json:"shape,omitempty"`
}

// HitTest finds the topmost shape containing (x, y).
func (s *Service) HitTest(ctx context.Context, drawingID, userID string, x, y float64) (*Hit, error) {
	ed, err := s.open(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}

	hit := &Hit{X: x, Y: y, Index: -1}
	id, ok := ed.HitTest(x, y)
	if !ok {
		return hit, nil
	}
	sh, _ := ed.Shape(id)
	rec := document.ToRecord(sh)
	hit.Hit = true
	hit.Index = ed.ZIndex(id)
	hit.Shape = &rec
	return hit, nil
}

// IndexStats reports the spatial index built over the current canvas.
func (s *Service) IndexStats(ctx context.Context, drawingID, userID string) (editor.Stats, error) {
	ed, err := s.open(ctx, drawingID, userID)
	if err != nil {
		return editor.Stats{}, err
	}
	return ed.Stats(), nil
}

// open loads the current canvas into a fresh editor.
func (s *Service) open(ctx context.Context, drawingID, userID string) (*editor.Editor, error) {
	d, err := s.Get(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	shapes, err := s.currentShapes(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	ed := editor.New(d.Width, d.Height, s.editorOpts...)
	ed.Load(shapes)
	return ed, nil
}

func (s *Service) currentShapes(ctx context.Context, drawingID string) ([]geometry.Shape, error) {
	if s.live != nil {
		if shapes, ok := s.live(drawingID); ok {
			return shapes, nil
		}
	}
	snap, err := s.store.LatestSnapshot(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snapshotShapes(snap), nil
}

// snapshotShapes decodes a stored snapshot, logging and dropping records that
// no longer validate.
func snapshotShapes(snap *Snapshot) []geometry.Shape {
	shapes, errs := document.FromRecords(snap.Shapes)
	for _, err := range errs {
		slog.Warn("skip stored shape record",
			"drawing_id", snap.DrawingID, "version", snap.Version, "error", err)
	}
	return shapes
}

// CanOpen reports whether userID may join the live session of a drawing.
func (s *Service) CanOpen(ctx context.Context, drawingID, userID string) error {
	if drawingID == PlaygroundID {
		return nil
	}
	_, err := s.Get(ctx, drawingID, userID)
	return err
}

// LoadCanvas implements collab.Store.
func (s *Service) LoadCanvas(ctx context.Context, drawingID string) (float64, float64, []geometry.Shape, error) {
	if drawingID == PlaygroundID {
		return s.width, s.height, document.SampleShapes(), nil
	}
	d, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("get drawing: %w", err)
	}
	snap, err := s.store.LatestSnapshot(ctx, drawingID)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return d.Width, d.Height, snapshotShapes(snap), nil
}

// SaveCanvas implements collab.Store. The playground is discarded.
func (s *Service) SaveCanvas(ctx context.Context, drawingID string, shapes []geometry.Shape) error {
	if drawingID == PlaygroundID {
		return nil
	}
	if _, err := s.store.CreateSnapshot(ctx, drawingID, document.ToRecords(shapes)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func validSize(w, h float64) bool {
	return w > 0 && h > 0 && w <= maxCanvasSide && h <= maxCanvasSide
}
