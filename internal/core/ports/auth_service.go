package ports

import (
	"context"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// AuthService issues credentials: registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.AccessToken, error)
}

// TokenValidator verifies a bearer token and extracts the caller identity.
// It never touches a store.
type TokenValidator interface {
	Validate(token string) (domain.Principal, error)
}

// TokenIssuer signs access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(user *domain.User) (*domain.AccessToken, error)
}
