package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/greenroute/dispatch-system/docs"
	"github.com/greenroute/dispatch-system/internal/api/handler"
	"github.com/greenroute/dispatch-system/internal/api/middleware"
	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/infrastructure/http/handlers"
)

const welcomeMessage = "Welcome to the Waste Management Dispatch API"

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Log zerolog.Logger

	Auth   ports.AuthService
	Tokens ports.TokenValidator
	Jobs   ports.JobService

	RateLimitStore   echomiddleware.RateLimiterStore
	RateLimitBackend string

	CORSOrigins []string
	BodyLimit   string

	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handlers.Pinger

	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	bodyLimit := deps.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "1M"
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         15552000,
		ReferrerPolicy:     "no-referrer",
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "dispatch",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if deps.RateLimitStore != nil {
		e.Use(middleware.RateLimit(deps.RateLimitStore, deps.RateLimitBackend))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	jobHandler := handler.NewJobHandler(deps.Jobs)
	requireAuth := middleware.Auth(deps.Tokens)
	can := middleware.RequirePermission

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, welcomeMessage)
	})

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- Dispatch routes ---
	dispatch := e.Group("/api/dispatch", requireAuth)
	dispatch.POST("", jobHandler.Create, can(domain.ActionCreateJob))
	dispatch.GET("", jobHandler.ListAll, can(domain.ActionListAllJobs))
	dispatch.GET("/driver", jobHandler.ListOwn, can(domain.ActionListOwnJobs))
	dispatch.GET("/:id", jobHandler.Get, can(domain.ActionGetJob))
	dispatch.PATCH("/:id/status", jobHandler.UpdateStatus, can(domain.ActionUpdateStatus))
	dispatch.DELETE("/:id", jobHandler.Delete, can(domain.ActionDeleteJob))
	dispatch.GET("/:id/events", jobHandler.Events, can(domain.ActionViewJobEvents))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
