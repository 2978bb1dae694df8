package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	api.Post("/users/register", cfg.Users.Register)
	api.Post("/auth/login", cfg.Users.Login)

	authed := api.Group("", cfg.AuthMiddleware.Handle)

	authed.Get("/users/me", cfg.Users.Me)
	authed.Get("/users", cfg.Users.List)
	authed.Delete("/users/:id", cfg.Users.Delete)

	// stats before :id so the literal segment wins
	authed.Get("/tickets/stats", cfg.Tickets.GetStats)
	authed.Post("/tickets", cfg.Tickets.CreateTicket)
	authed.Get("/tickets", cfg.Tickets.ListTickets)
	authed.Get("/tickets/:id", cfg.Tickets.GetTicket)
	authed.Put("/tickets/:id", cfg.Tickets.UpdateTicket)

	authed.Get("/categories", cfg.Categories.List)
	authed.Post("/categories", cfg.Categories.Create)
	authed.Delete("/categories/:id", cfg.Categories.Delete)
}
