package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/api/http/handlers"
	"github.com/spec-kit/crew-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Get("/employees", cfg.Auth.ListEmployees)
	authGroup.Post("/login", cfg.Auth.Login)

	signedIn := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	signedIn.Post("/logout", cfg.Auth.Logout)
	signedIn.Get("/me", cfg.Auth.Me)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireElevated())
	admin.Post("/employees", cfg.Admin.CreateEmployee)
	admin.Post("/employees/pin", cfg.Admin.SetPin)
	admin.Post("/employees/:id/pin", cfg.Admin.SetPin)
	admin.Patch("/employees/:id/active", cfg.Admin.SetActive)

	catalog := app.Group("/catalog", cfg.AuthMiddleware.Handle, auth.RequireRole())
	catalog.Get("/trucks", cfg.Catalog.Trucks)
	catalog.Get("/routes", cfg.Catalog.Routes)
}
