package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

// NewMemoryRateLimitStore is the single-process limiter used when no Redis is
// configured: a token bucket refilling requests tokens per window.
func NewMemoryRateLimitStore(requests int, window time.Duration) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(requests) / window.Seconds()),
		Burst:     requests,
		ExpiresIn: window,
	})
}

// RateLimit limits requests per client IP. Probes and metrics are exempt.
func RateLimit(store echomiddleware.RateLimiterStore, backend string) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/health") || path == "/metrics"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.WithLabelValues(backend).Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}
