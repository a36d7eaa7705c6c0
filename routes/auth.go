package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/controllers"
	"github.com/safein/safein-server/middleware"
	"github.com/safein/safein-server/models"
)

// SetupAuthRoutes configures authentication and staff routes
func SetupAuthRoutes(router fiber.Router, h *controllers.Handler) {
	auth := router.Group("/auth")

	// Public routes
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	// Protected routes
	auth.Get("/me", middleware.Protected(h.JWTSecret), h.Me)

	employees := router.Group("/employees", middleware.Protected(h.JWTSecret))
	employees.Get("/", h.ListEmployees)
	employees.Post("/", middleware.RequireRole(models.RoleAdmin), h.CreateEmployee)
}
