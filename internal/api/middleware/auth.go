package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

const principalKey = "principal"

// Auth validates the bearer token and injects the caller's principal into
// the context.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthAttemptsTotal.WithLabelValues("validate", "missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AuthAttemptsTotal.WithLabelValues("validate", "malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			principal, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.AuthAttemptsTotal.WithLabelValues("validate", "invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			SetPrincipal(c, principal)
			return next(c)
		}
	}
}

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller injected by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	if !ok || p.SubjectID == "" {
		return domain.Principal{}, false
	}
	return p, true
}
