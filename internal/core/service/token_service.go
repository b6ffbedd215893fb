package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// Claims is the JWT payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs access tokens and validates bearer tokens with a
// server-held HMAC secret. It holds no mutable state.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret, issuer string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for user valid for exactly domain.TokenTTL.
// JWT timestamps have second precision, so issuance is truncated to the
// second to keep expiry at exactly iat + TTL.
func (s *TokenService) Issue(user *domain.User) (*domain.AccessToken, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(domain.TokenTTL)

	claims := Claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.AccessToken{
		Token:     signed,
		SubjectID: user.ID,
		Role:      user.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks signature, algorithm, issuer and expiry, then decodes the
// caller identity. A token is accepted while now < exp.
func (s *TokenService) Validate(token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return domain.Principal{}, fmt.Errorf("%w: malformed claims", domain.ErrUnauthenticated)
	}

	return domain.Principal{
		SubjectID: claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
