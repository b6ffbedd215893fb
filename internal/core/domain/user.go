package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the coarse permission tier carried by every user and token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidUser        = errors.New("username and password are required")
)

// ParseRole converts raw input into a Role. An empty value yields the
// default dispatcher role; anything outside the enum is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case "":
		return RoleDispatcher, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleDispatcher:
		return RoleDispatcher, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDispatcher
}

func (r Role) String() string { return string(r) }

// User models an account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
