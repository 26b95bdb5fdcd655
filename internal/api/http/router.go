package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hosting-portal/internal/api/http/handlers"
	"github.com/spec-kit/hosting-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/responses", cfg.Tickets.AddResponse)
	tickets.Get("/:id/responses", cfg.Tickets.ListResponses)

	admin := app.Group("/admin/tickets", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("", cfg.AdminTickets.ListTickets)
	admin.Patch("/:id", cfg.AdminTickets.UpdateTicket)
}
