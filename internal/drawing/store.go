package drawing

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/typeid"
)

type Drawing struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is one stored version of a drawing's shapes, bottom to top.
type Snapshot struct {
	ID        string            `json:"id"`
	DrawingID string            `json:"drawingId"`
	Version   int               `json:"version"`
	Shapes    []document.Record `json:"shapes"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Store persists drawings and their snapshots. Missing rows are reported as
// ErrNotFound.
type Store interface {
	CreateDrawing(ctx context.Context, d *Drawing, shapes []document.Record) error
	GetDrawing(ctx context.Context, id string) (*Drawing, error)
	ListDrawings(ctx context.Context, ownerID string) ([]Drawing, error)
	DeleteDrawing(ctx context.Context, id string) error
	LatestSnapshot(ctx context.Context, drawingID string) (*Snapshot, error)
	CreateSnapshot(ctx context.Context, drawingID string, shapes []document.Record) (*Snapshot, error)
}

// MemoryStore keeps everything in process. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	drawings  map[string]*Drawing
	snapshots map[string][]Snapshot
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drawings:  make(map[string]*Drawing),
		snapshots: make(map[string][]Snapshot),
		now:       time.Now,
	}
}

func (m *MemoryStore) CreateDrawing(_ context.Context, d *Drawing, shapes []document.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	d.Version = 1
	cp := *d
	m.drawings[d.ID] = &cp
	m.snapshots[d.ID] = []Snapshot{{
		ID:        typeid.NewSnapshotID(),
		DrawingID: d.ID,
		Version:   1,
		Shapes:    slices.Clone(shapes),
		CreatedAt: now,
	}}
	return nil
}

func (m *MemoryStore) GetDrawing(_ context.Context, id string) (*Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drawings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) ListDrawings(_ context.Context, ownerID string) ([]Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Drawing{}
	for _, d := range m.drawings {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	slices.SortFunc(out, func(a, b Drawing) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (m *MemoryStore) DeleteDrawing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drawings[id]; !ok {
		return ErrNotFound
	}
	delete(m.drawings, id)
	delete(m.snapshots, id)
	return nil
}

func (m *MemoryStore) LatestSnapshot(_ context.Context, drawingID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := m.snapshots[drawingID]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	snap := snaps[len(snaps)-1]
	snap.Shapes = slices.Clone(snap.Shapes)
	return &snap, nil
}

func (m *MemoryStore) CreateSnapshot(_ context.Context, drawingID string, shapes []document.Record) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drawings[drawingID]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now().UTC()
	d.Version++
	d.UpdatedAt = now

	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		DrawingID: drawingID,
		Version:   d.Version,
		Shapes:    slices.Clone(shapes),
		CreatedAt: now,
	}
	m.snapshots[drawingID] = append(m.snapshots[drawingID], snap)
	return &snap, nil
}
