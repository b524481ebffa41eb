package leads

import (
	"encoding/json"

	"training-copilot/config"
	coreleads "training-copilot/internal/core/leads"
	"training-copilot/pkg/apperror"
	"training-copilot/pkg/apperror/status"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type handler struct {
	svc *coreleads.Service
}

// HandleSubmit records one lead. Validation failures name the first missing
// field; anything past validation is accepted.
func (h *handler) HandleSubmit(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var lead coreleads.Lead
	if err := json.Unmarshal(c.Body(), &lead); err != nil {
		return apperror.BadRequest(config.ModuleLeads, c, status.InvalidRequestBody, err.Error())
	}

	if err := h.svc.Submit(c.Context(), lead); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return apperror.BadRequest(config.ModuleLeads, c, status.MissingParams, errs[0].Field()+" is required")
		}
		return apperror.InternalError(config.ModuleLeads, c, err)
	}

	return apperror.Success(config.ModuleLeads, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "信息已收集，感谢您的支持！",
		TrackingID: trackingID,
		Data:       nil,
	})
}
