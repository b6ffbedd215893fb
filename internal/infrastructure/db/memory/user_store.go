package memory

import (
	"context"
	"sync"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

// UserStore is a process-local ports.AuthRepository. Username uniqueness is
// enforced under the write lock.
type UserStore struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	ids        *idGenerator
}

var _ ports.AuthRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		byUsername: make(map[string]*domain.User),
		ids:        newIDGenerator(),
	}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return nil, domain.ErrUserExists
	}

	stored := *user
	stored.ID = s.ids.next()
	s.byUsername[stored.Username] = &stored

	out := stored
	return &out, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Ping always succeeds; it lets the store stand in for a database in
// readiness checks.
func (s *UserStore) Ping(context.Context) error { return nil }
