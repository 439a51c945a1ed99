// Package api wires the HTTP surface of the installation tracker.
//
// @title                       Solar Installation Tracker API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  AdminKey
// @in                          header
// @name                        X-Admin-Key
package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/solarops/installation-tracker/docs"
	"github.com/solarops/installation-tracker/internal/api/handler"
	"github.com/solarops/installation-tracker/internal/api/middleware"
	"github.com/solarops/installation-tracker/internal/core/ports"
	"github.com/solarops/installation-tracker/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators NewRouter needs. Health and
// Readiness may be nil, in which case default probes are mounted.
type Dependencies struct {
	Installations ports.InstallationService
	Auth          ports.AuthService
	Tokens        ports.TokenAuthenticator
	Readiness     *handlers.HealthDependenciesHandler

	AdminAPIKey   string
	AllowedOrigin string
	Production    bool
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Production)

	// HTTP metrics go to a per-router registry; /metrics also gathers the
	// process-wide custom metrics.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.AllowedOrigin},
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, middleware.HeaderAdminKey, handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "installtrack",
		Registerer: reg,
	}))

	// --- Health probes (no auth required) ---
	readiness := deps.Readiness
	if readiness == nil {
		readiness = handlers.NewHealthDependenciesHandler(nil)
	}
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", readiness.Readiness)

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "API is working!"})
	})

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	api.POST("/auth/login", authHandler.Login)

	users := api.Group("/auth/users", middleware.AdminKey(deps.AdminAPIKey))
	users.POST("", authHandler.CreateUser)
	users.GET("", authHandler.ListUsers)

	// --- Installation routes ---
	installationHandler := handler.NewInstallationHandler(deps.Installations)
	installations := api.Group("/installations", middleware.Auth(deps.Tokens))
	installations.GET("", installationHandler.List)
	installations.POST("", installationHandler.Create)
	installations.POST("/bulk", installationHandler.CreateBulk)
	installations.GET("/:id", installationHandler.Get)
	installations.PUT("/:id", installationHandler.Update)
	installations.DELETE("/:id", installationHandler.Delete)

	// --- Territory lookups ---
	territoryHandler := handler.NewTerritoryHandler()
	api.GET("/territories", territoryHandler.List)
	api.GET("/territories/resolve", territoryHandler.Resolve)

	return e
}
