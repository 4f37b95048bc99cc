package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// StoredUser is a user row including the password hash.
type StoredUser struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// UserStore persists users. CreateUser returns ErrEmailTaken for a duplicate
// email; lookups return ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, u StoredUser) (*StoredUser, error)
	GetUserByEmail(ctx context.Context, email string) (*StoredUser, error)
	GetUserByID(ctx context.Context, id string) (*StoredUser, error)
}

type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]*StoredUser
	byEmail map[string]*StoredUser
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]*StoredUser),
		byEmail: make(map[string]*StoredUser),
	}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, u StoredUser) (*StoredUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := m.byEmail[key]; taken {
		return nil, ErrEmailTaken
	}
	u.CreatedAt = time.Now().UTC()
	stored := u
	m.byID[u.ID] = &stored
	m.byEmail[key] = &stored
	return &u, nil
}

func (m *MemoryUserStore) GetUserByEmail(_ context.Context, email string) (*StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUserStore) GetUserByID(_ context.Context, id string) (*StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
