package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/auth"
	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/drawing"
	"github.com/inamate/inamate/editor-go/internal/typeid"
)

// Store implements drawing.Store and auth.UserStore.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ drawing.Store  = (*Store)(nil)
	_ auth.UserStore = (*Store)(nil)
)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, u auth.StoredUser) (*auth.StoredUser, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, auth.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.StoredUser, error) {
	return s.getUser(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*auth.StoredUser, error) {
	return s.getUser(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*auth.StoredUser, error) {
	var u auth.StoredUser
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateDrawing(ctx context.Context, d *drawing.Drawing, shapes []document.Record) error {
	data, err := json.Marshal(shapes)
	if err != nil {
		return fmt.Errorf("marshal shapes: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO drawings (id, name, owner_id, width, height) VALUES ($1, $2, $3, $4, $5)
			 RETURNING version, created_at, updated_at`,
			d.ID, d.Name, d.OwnerID, d.Width, d.Height,
		).Scan(&d.Version, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert drawing: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO snapshots (id, drawing_id, version, shapes) VALUES ($1, $2, $3, $4)`,
			typeid.NewSnapshotID(), d.ID, d.Version, data,
		)
		if err != nil {
			return fmt.Errorf("insert initial snapshot: %w", err)
		}
		return nil
	})
}

const drawingColumns = `id, name, owner_id, width, height, version, created_at, updated_at`

func scanDrawing(row pgx.Row) (*drawing.Drawing, error) {
	var d drawing.Drawing
	err := row.Scan(&d.ID, &d.Name, &d.OwnerID, &d.Width, &d.Height, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetDrawing(ctx context.Context, id string) (*drawing.Drawing, error) {
	d, err := scanDrawing(s.pool.QueryRow(ctx, `SELECT `+drawingColumns+` FROM drawings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, drawing.ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return d, nil
}

func (s *Store) ListDrawings(ctx context.Context, ownerID string) ([]drawing.Drawing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+drawingColumns+` FROM drawings WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer rows.Close()

	out := []drawing.Drawing{}
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drawing: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteDrawing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return drawing.ErrNotFound
	}
	return nil
}

func (s *Store) LatestSnapshot(ctx context.Context, drawingID string) (*drawing.Snapshot, error) {
	var (
		snap drawing.Snapshot
		data []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, drawing_id, version, shapes, created_at FROM snapshots
		 WHERE drawing_id = $1 ORDER BY version DESC LIMIT 1`, drawingID,
	).Scan(&snap.ID, &snap.DrawingID, &snap.Version, &data, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, drawing.ErrNotFound
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap.Shapes); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

// CreateSnapshot bumps the drawing version and stores shapes under it in one
// transaction.
func (s *Store) CreateSnapshot(ctx context.Context, drawingID string, shapes []document.Record) (*drawing.Snapshot, error) {
	data, err := json.Marshal(shapes)
	if err != nil {
		return nil, fmt.Errorf("marshal shapes: %w", err)
	}

	snap := drawing.Snapshot{
		ID:        typeid.NewSnapshotID(),
		DrawingID: drawingID,
		Shapes:    shapes,
	}
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE drawings SET version = version + 1, updated_at = now() WHERE id = $1 RETURNING version`,
			drawingID,
		).Scan(&snap.Version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return drawing.ErrNotFound
			}
			return fmt.Errorf("bump version: %w", err)
		}

		return tx.QueryRow(ctx,
			`INSERT INTO snapshots (id, drawing_id, version, shapes) VALUES ($1, $2, $3, $4) RETURNING created_at`,
			snap.ID, drawingID, snap.Version, data,
		).Scan(&snap.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
