package domain

import (
	"errors"
	"time"
)

// TokenTTL is the fixed validity window of an access token.
const TokenTTL = time.Hour

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
)

// Principal is the identity extracted from a validated access token.
// Role is a snapshot taken at issuance and is not re-read from the store.
type Principal struct {
	SubjectID string
	Role      Role
	ExpiresAt time.Time
}

// AccessToken is an issued, signed credential. It is never persisted.
type AccessToken struct {
	Token     string
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
