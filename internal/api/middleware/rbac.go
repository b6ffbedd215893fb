package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

// RequirePermission rejects callers whose role may not perform action. It
// must run after Auth.
func RequirePermission(action domain.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !domain.Permit(p.Role, action) {
				metrics.AuthzDeniedTotal.WithLabelValues(string(action)).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
