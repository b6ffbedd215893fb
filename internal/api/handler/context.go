package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/dispatch-system/internal/api/middleware"
	"github.com/greenroute/dispatch-system/internal/core/domain"
)

// ctxPrincipal returns the caller injected by the Auth middleware and fails
// fast before any service call when it is missing.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
