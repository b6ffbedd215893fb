package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/dispatch-system/internal/api/middleware"
	"github.com/greenroute/dispatch-system/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, role string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*domain.AccessToken, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, role string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, role)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	return s.loginFn(ctx, username, password)
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			if username != "alice" || password != "secret1" || role != "admin" {
				t.Fatalf("unexpected args: %s %s %s", username, password, role)
			}
			return &domain.User{ID: "u-1", Username: username, PasswordHash: "$2a$hash", Role: domain.RoleAdmin, CreatedAt: created}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1","role":"admin"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u-1" || resp["username"] != "alice" || resp["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_PropagatesServiceErrors(t *testing.T) {
	for _, want := range []error{domain.ErrUserExists, domain.ErrInvalidRole} {
		stub := &stubAuthService{
			registerFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
				return nil, want
			},
		}
		c, _ := newTestContext(http.MethodPost, "/api/auth/register", `{"username":"bob","password":"secret2","role":"root"}`)

		if err := NewAuthHandler(stub).Register(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := newTestContext(http.MethodPost, "/api/auth/register", `{"username":"bob","password":"12345"}`)
	err := NewAuthHandler(stub).Register(c)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "password must be at least 6 characters") {
		t.Fatalf("unexpected message: %s", ve.Error())
	}
}

func TestAuthHandler_Register_PasswordMeasuredInBytes(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	// 40 characters, 80 bytes
	body := `{"username":"erin","password":"` + strings.Repeat("é", 40) + `"}`
	c, _ := newTestContext(http.MethodPost, "/api/auth/register", body)
	err := NewAuthHandler(stub).Register(c)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "password must be at most 72 bytes") {
		t.Fatalf("unexpected message: %s", ve.Error())
	}
}

func TestAuthHandler_Register_BlankUsername(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := newTestContext(http.MethodPost, "/api/auth/register", `{"username":"   ","password":"secret1"}`)
	err := NewAuthHandler(stub).Register(c)

	var ve *ValidationError
	if !errors.As(err, &ve) || !strings.Contains(ve.Error(), "username is required") {
		t.Fatalf("expected username ValidationError, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := newTestContext(http.MethodPost, "/api/auth/register", "not-json")
	err := NewAuthHandler(stub).Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	exp := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.AccessToken, error) {
			if username != "alice" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.AccessToken{Token: "token123", SubjectID: "u-1", Role: domain.RoleAdmin, ExpiresAt: exp}, nil
		},
	}

	c, rec := newTestContext(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`)
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.AccessToken, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	c, _ := newTestContext(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"bad"}`)
	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.AccessToken, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := newTestContext(http.MethodPost, "/api/auth/login", "{")
	err := NewAuthHandler(stub).Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	exp := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	c, rec := newTestContext(http.MethodGet, "/api/auth/me", "")
	middleware.SetPrincipal(c, domain.Principal{SubjectID: "u-1", Role: domain.RoleDispatcher, ExpiresAt: exp})

	if err := NewAuthHandler(&stubAuthService{}).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.SubjectID != "u-1" || resp.Role != "dispatcher" || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutPrincipal(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/auth/me", "")
	err := NewAuthHandler(&stubAuthService{}).Me(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
