package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/controllers"
	"github.com/safein/safein-server/middleware"
)

func SetupVisitorRoutes(router fiber.Router, h *controllers.Handler) {
	visitor := router.Group("/visitors", middleware.Protected(h.JWTSecret))
	visitor.Get("/", h.ListVisitors)
	visitor.Get("/:id", h.GetVisitor)
	visitor.Post("/", h.CreateVisitor)
	visitor.Patch("/:id", h.UpdateVisitor)
	visitor.Post("/:id/photo", h.UploadVisitorPhoto)
}
