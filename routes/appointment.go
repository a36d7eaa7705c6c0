package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/controllers"
	"github.com/safein/safein-server/middleware"
	"github.com/safein/safein-server/models"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(router fiber.Router, h *controllers.Handler) {
	appointment := router.Group("/appointments", middleware.Protected(h.JWTSecret))
	appointment.Get("/", h.ListAppointments)
	appointment.Get("/:id", h.GetAppointment)
	appointment.Post("/", h.CreateAppointment)
	appointment.Patch("/:id/status", h.UpdateAppointmentStatus)
	appointment.Post("/:id/check-in", middleware.RequireRole(models.RoleAdmin, models.RoleSecurity), h.CheckIn)
	appointment.Post("/:id/check-out", middleware.RequireRole(models.RoleAdmin, models.RoleSecurity), h.CheckOut)
	appointment.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.DeleteAppointment)
}
