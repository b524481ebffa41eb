package export

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers export routes on the provided router.
func RegisterRoutes(r fiber.Router) {
	grp := r.Group("/export")

	grp.Post("/quiz", HandleQuizCSV)
}
