package parse

import (
	"training-copilot/internal/core/extract"

	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers the document parsing route on the provided router.
func RegisterRoutes(r fiber.Router, extractor *extract.Extractor) {
	h := &handler{extractor: extractor}

	r.Post("/parse", h.HandleParse)
}
