package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/api/http/handlers"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Activities     *handlers.ActivitiesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/bulk/update", auth.RequireAdmin(), cfg.Tickets.BulkUpdate)
	tickets.Post("/bulk/delete", auth.RequireAdmin(), cfg.Tickets.BulkDelete)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Get("/:id/activities", cfg.Activities.ForTicket)

	activities := app.Group("/activities", cfg.AuthMiddleware.Handle, auth.RequireUser(), auth.RequireAdmin())
	activities.Get("/", cfg.Activities.Feed)
}
