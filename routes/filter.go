package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/controllers"
	"github.com/safein/safein-server/middleware"
)

// SetupFilterRoutes exposes the date-range picker of each list screen.
func SetupFilterRoutes(router fiber.Router, h *controllers.Handler) {
	filter := router.Group("/filters", middleware.Protected(h.JWTSecret))
	filter.Get("/:scope", h.GetFilter)
	filter.Post("/:scope/:action", h.FilterAction)
}
