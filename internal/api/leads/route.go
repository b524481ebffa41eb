package leads

import (
	coreleads "training-copilot/internal/core/leads"

	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers lead capture routes on the provided router.
func RegisterRoutes(r fiber.Router, svc *coreleads.Service) {
	h := &handler{svc: svc}

	r.Post("/leads", h.HandleSubmit)
}
