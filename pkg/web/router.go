package web

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes mounts every API endpoint on the app.
func RegisterRoutes(app *fiber.App, handlers *APIHandlers) {
	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Post("/:id/trigger", handlers.TriggerWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	app.Get("/executions/:id", handlers.GetExecution)

	n := app.Group("/notifications")
	n.Post("/send", handlers.SendNotification)
	n.Post("/:id/read", handlers.MarkNotificationRead)

	u := app.Group("/users/:userId/notifications")
	u.Get("/", handlers.GetUserNotifications)
	u.Post("/read-all", handlers.MarkAllNotificationsRead)

	app.Get("/health", handlers.HealthCheck)
}
