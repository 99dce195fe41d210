package web

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes mounts the API surface on the app. Kept next to the
// handlers so the served routes and the handler set cannot drift apart.
func RegisterRoutes(app *fiber.App, handlers *APIHandlers) {
	tenants := app.Group("/tenants/:tenantId")
	tenants.Post("/provision", handlers.ProvisionTenant)

	tenants.Get("/statuses", handlers.GetStatuses)
	tenants.Post("/statuses", handlers.CreateStatus)
	tenants.Patch("/statuses/:name", handlers.UpdateStatus)
	tenants.Delete("/statuses/:name", handlers.DeleteStatus)

	tenants.Get("/triggers", handlers.GetTriggers)
	tenants.Post("/triggers", handlers.CreateTrigger)
	tenants.Get("/triggers/:id", handlers.GetTrigger)
	tenants.Patch("/triggers/:id", handlers.UpdateTrigger)
	tenants.Delete("/triggers/:id", handlers.DeleteTrigger)

	w := tenants.Group("/work-orders")
	w.Get("/", handlers.GetWorkOrders)
	w.Post("/", handlers.CreateWorkOrder)
	w.Get("/:id", handlers.GetWorkOrder)
	w.Patch("/:id/status", handlers.ChangeWorkOrderStatus)
	w.Post("/:id/time-entries", handlers.LogTime)
	w.Get("/:id/time-entries", handlers.GetTimeEntries)
	w.Get("/:id/invoices", handlers.GetInvoices)
	w.Get("/:id/notifications", handlers.GetNotifications)
	w.Get("/:id/automation-runs", handlers.GetAutomationRuns)

	app.Get("/health", handlers.HealthCheck)
}
