package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/unrolled/secure"

	_ "github.com/bandstand/onboarding-api/docs"
	"github.com/bandstand/onboarding-api/internal/api/handler"
	"github.com/bandstand/onboarding-api/internal/api/middleware"
	"github.com/bandstand/onboarding-api/internal/core/ports"
	"github.com/bandstand/onboarding-api/internal/core/security"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Auth          ports.AuthService
	Applications  ports.ApplicationService
	Authenticator ports.Authenticator
	// Accounts enables the per-request account liveness lookup when set.
	Accounts middleware.AccountLookup
	Checks   map[string]handler.DependencyCheck
	Log      zerolog.Logger

	Production bool
	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echo.WrapMiddleware(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        d.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !d.Production,
	}).Handler))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "onboarding",
		Registerer: registerer,
	}))

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	var authOpts []middleware.AuthOption
	if d.Accounts != nil {
		authOpts = append(authOpts, middleware.WithLivenessCheck(d.Accounts))
	}
	auth := middleware.Auth(d.Authenticator, authOpts...)
	require := func(p security.Policy) echo.MiddlewareFunc { return middleware.Require(auth, p) }

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Auth)
	artistHandler := handler.NewArtistHandler(d.Applications)
	adminHandler := handler.NewAdminHandler(d.Applications)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, require(security.AnyRole))

	// --- Self-service profile ---
	api.GET("/user/profile", userHandler.GetProfile, require(security.AnyRole))
	api.PUT("/user/profile", userHandler.UpdateProfile, require(security.AnyRole))

	// --- Artist onboarding ---
	api.POST("/artist/apply", artistHandler.Apply, require(security.UserOnly))
	api.GET("/artist/my-applications", artistHandler.MyApplications, require(security.AnyRole))
	api.GET("/artist/profile", artistHandler.Profile, require(security.AdminOrArtist))

	// --- Review queue ---
	admin := api.Group("/admin", require(security.AdminOnly))
	admin.GET("/applications", adminHandler.Applications)
	admin.POST("/applications/:id/approve", adminHandler.Approve)
	admin.POST("/applications/:id/reject", adminHandler.Reject)
	admin.GET("/stats", adminHandler.Stats)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
