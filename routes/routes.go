package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/controllers"
	"github.com/safein/safein-server/middleware"
)

// SetupRoutes mounts every API group under /api/v1.
func SetupRoutes(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api/v1")

	SetupAuthRoutes(api, h)
	SetupAppointmentRoutes(api, h)
	SetupVisitorRoutes(api, h)
	SetupFilterRoutes(api, h)

	api.Get("/dashboard/stats", middleware.Protected(h.JWTSecret), h.DashboardStats)
}
