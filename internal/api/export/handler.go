package export

import (
	"encoding/json"

	"training-copilot/config"
	coreexport "training-copilot/internal/core/export"
	"training-copilot/internal/core/generate"
	"training-copilot/pkg/apperror"
	"training-copilot/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type exportRequest struct {
	Questions []generate.QuizItem `json:"questions"`
}

// HandleQuizCSV renders the posted quiz items as a downloadable CSV file.
func HandleQuizCSV(c fiber.Ctx) error {
	var req exportRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleExport, c, status.InvalidRequestBody, err.Error())
	}
	if len(req.Questions) == 0 {
		return apperror.BadRequest(config.ModuleExport, c, status.MissingParams, "questions is required")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="training_quiz.csv"`)
	return c.Send(coreexport.QuizCSV(req.Questions))
}
