package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-records-service/internal/api/http/handlers"
	"github.com/spec-kit/health-records-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Records        *handlers.RecordsHandler
	Consents       *handlers.ConsentsHandler
	Appointments   *handlers.AppointmentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	admin := protected.Group("/admin")
	admin.Post("/roles/grant", cfg.Admin.GrantRole)
	admin.Post("/roles/revoke", cfg.Admin.RevokeRole)
	admin.Put("/principals/:id/active", cfg.Admin.SetActive)
	admin.Get("/principals", cfg.Admin.ListPrincipals)
	admin.Put("/vault/writer", cfg.Admin.SetWriter)
	admin.Post("/credentials", cfg.Admin.RegisterCredential)
	admin.Get("/audit", cfg.Admin.ListAudit)

	records := protected.Group("/records")
	records.Post("", cfg.Records.Create)
	records.Get("", cfg.Records.ListBySubject)
	records.Get("/:id", cfg.Records.Get)
	records.Patch("/:id", cfg.Records.Update)
	records.Post("/:id/archive", cfg.Records.Archive)

	consents := protected.Group("/consents")
	consents.Post("", cfg.Consents.Give)
	consents.Get("", cfg.Consents.ListOwn)
	consents.Get("/check", cfg.Consents.Check)
	consents.Delete("/:delegate", cfg.Consents.Revoke)

	appointments := protected.Group("/appointments")
	appointments.Post("", cfg.Appointments.Schedule)
	appointments.Get("", cfg.Appointments.List)
	appointments.Get("/:id", cfg.Appointments.Get)
	appointments.Post("/:id/confirm", cfg.Appointments.Confirm)
	appointments.Post("/:id/cancel", cfg.Appointments.Cancel)
}
