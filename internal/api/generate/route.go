package generate

import (
	coregen "training-copilot/internal/core/generate"

	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers generation routes on the provided router.
func RegisterRoutes(r fiber.Router, svc *coregen.Service) {
	h := &handler{svc: svc}
	grp := r.Group("/generate")

	grp.Post("/course", h.HandleCourse)
	grp.Post("/ops", h.HandleOps)
	grp.Post("/survey", h.HandleSurvey)
	grp.Post("/quiz", h.HandleQuiz)
	grp.Post("/feedback", h.HandleFeedback)
}
