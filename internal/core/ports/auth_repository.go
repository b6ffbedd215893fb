package ports

import (
	"context"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// AuthRepository defines the credential store.
type AuthRepository interface {
	// Create persists a new user and assigns its ID. Returns
	// domain.ErrUserExists when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
