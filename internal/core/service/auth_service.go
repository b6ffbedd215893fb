package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

// dummyPassword feeds the hash compared against when a username is unknown,
// so both login failure paths pay for one bcrypt comparison.
const dummyPassword = "dispatch-login-placeholder"

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AuthService implements registration and login.
type AuthService struct {
	repo      ports.AuthRepository
	tokens    ports.TokenIssuer
	logger    zerolog.Logger
	cost      int
	dummyHash []byte
	now       func() time.Time
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost sets the bcrypt work factor. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.cost = cost }
}

func NewAuthService(repo ports.AuthRepository, tokens ports.TokenIssuer, logger zerolog.Logger, opts ...AuthOption) (*AuthService, error) {
	s := &AuthService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates a user with a bcrypt-hashed secret. The username is
// stored trimmed and an empty role defaults to dispatcher.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return nil, domain.ErrInvalidUser
	}
	if len(password) > maxPasswordBytes {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidUser, maxPasswordBytes)
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         parsedRole,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role.String()).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong secrets both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}
