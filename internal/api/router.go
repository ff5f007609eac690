package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/juniorseniors/users-api/docs"
	"github.com/juniorseniors/users-api/internal/api/handler"
	"github.com/juniorseniors/users-api/internal/api/middleware"
	"github.com/juniorseniors/users-api/internal/core/ports"
	"github.com/juniorseniors/users-api/internal/infrastructure/http/handlers"
)

// multipartOverhead leaves room for form boundaries and headers on top of the
// avatar size cap.
const multipartOverhead = 64 << 10

// Deps carries everything the router needs from the composition root.
type Deps struct {
	Accounts ports.AccountService
	Profiles ports.ProfileService
	Stager   handler.AvatarStager

	// AvatarDir is served statically under AvatarPublicPath. Leave empty when
	// avatars live in object storage.
	AvatarDir        string
	AvatarPublicPath string
	MaxUploadBytes   int64

	ReadinessChecks map[string]handlers.Check

	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	if d.MaxUploadBytes > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dK", (d.MaxUploadBytes+multipartOverhead)/1024)))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "users_api",
		Registerer: reg,
	}))

	// --- Operational routes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.ReadinessChecks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if d.AvatarDir != "" {
		publicPath := d.AvatarPublicPath
		if publicPath == "" {
			publicPath = "/avatars"
		}
		e.Static(publicPath, d.AvatarDir)
	}

	// --- User routes ---
	userHandler := handler.NewUserHandler(d.Accounts, d.Profiles, d.Stager)
	auth := middleware.Auth(d.Accounts)

	users := e.Group("/api/users")
	users.POST("/signup", userHandler.Signup)
	users.GET("/verify/:verificationToken", userHandler.Verify)
	users.POST("/verify", userHandler.ResendVerification)
	users.POST("/login", userHandler.Login)
	users.GET("/logout", userHandler.Logout, auth)
	users.GET("/current", userHandler.Current, auth)
	users.PATCH("/subscription", userHandler.UpdateSubscription, auth)
	users.PATCH("/avatar", userHandler.UpdateAvatar, auth)

	return e
}
