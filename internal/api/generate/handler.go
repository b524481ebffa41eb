package generate

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"training-copilot/config"
	coregen "training-copilot/internal/core/generate"
	"training-copilot/pkg/apperror"
	"training-copilot/pkg/apperror/status"
	"training-copilot/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

type handler struct {
	svc *coregen.Service
}

type courseRequest struct {
	Topic    string `json:"topic"`
	Audience string `json:"audience"`
	Duration string `json:"duration"`
	Style    string `json:"style"`
}

type quizRequest struct {
	Text       string `json:"text"`
	Base64     string `json:"base64"`
	MimeType   string `json:"mime_type"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type surveyRequest struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

type opsRequest struct {
	Type    string `json:"type"`
	Context string `json:"context"`
	Tone    string `json:"tone"`
}

// HandleCourse streams a course outline as SSE deltas.
func (h *handler) HandleCourse(c fiber.Ctx) error {
	var req courseRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleGenerate, c, status.InvalidRequestBody, err.Error())
	}
	if strings.TrimSpace(req.Topic) == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingParams, "topic is required")
	}

	stream, err := h.svc.StreamCourseOutline(context.Background(), coregen.CourseParams{
		Topic:    req.Topic,
		Audience: req.Audience,
		Duration: req.Duration,
		Style:    req.Style,
	})
	if err != nil {
		return generationError(c, err)
	}
	return streamSSE(c, stream)
}

// HandleOps streams operational copy as SSE deltas.
func (h *handler) HandleOps(c fiber.Ctx) error {
	var req opsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleGenerate, c, status.InvalidRequestBody, err.Error())
	}
	if strings.TrimSpace(req.Type) == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingParams, "type is required")
	}

	stream, err := h.svc.StreamOpsCopy(context.Background(), coregen.OpsParams{
		Type:    req.Type,
		Context: req.Context,
		Tone:    req.Tone,
	})
	if err != nil {
		return generationError(c, err)
	}
	return streamSSE(c, stream)
}

// HandleSurvey returns a survey template in one shot.
func (h *handler) HandleSurvey(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req surveyRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleGenerate, c, status.InvalidRequestBody, err.Error())
	}
	if strings.TrimSpace(req.Topic) == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingParams, "topic is required")
	}

	text, err := h.svc.GenerateSurvey(c.Context(), coregen.SurveyParams{Topic: req.Topic, Type: req.Type})
	if err != nil {
		return generationError(c, err)
	}

	return apperror.Success(config.ModuleGenerate, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "survey generated",
		TrackingID: trackingID,
		Data:       fiber.Map{"text": text},
	})
}

// HandleQuiz returns a normalized quiz item list.
func (h *handler) HandleQuiz(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req quizRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleGenerate, c, status.InvalidRequestBody, err.Error())
	}
	if req.Text == "" && req.Base64 == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingParams, "text or base64 is required")
	}
	if req.Count <= 0 {
		req.Count = 5
	}

	params := coregen.QuizParams{
		SourceText: req.Text,
		Count:      req.Count,
		Difficulty: req.Difficulty,
	}
	if req.Base64 != "" {
		params.Inline = &coregen.InlinePayload{MimeType: req.MimeType, Base64: req.Base64}
	}

	items, err := h.svc.GenerateQuiz(c.Context(), params)
	if err != nil {
		return generationError(c, err)
	}

	return apperror.Success(config.ModuleGenerate, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "quiz generated",
		TrackingID: trackingID,
		Data:       fiber.Map{"questions": items},
	})
}

// HandleFeedback returns a feedback analysis record.
func (h *handler) HandleFeedback(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req feedbackRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleGenerate, c, status.InvalidRequestBody, err.Error())
	}
	if strings.TrimSpace(req.Feedback) == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingParams, "feedback is required")
	}

	analysis, err := h.svc.AnalyzeFeedback(c.Context(), coregen.FeedbackParams{Feedback: req.Feedback})
	if err != nil {
		return generationError(c, err)
	}

	return apperror.Success(config.ModuleGenerate, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "feedback analyzed",
		TrackingID: trackingID,
		Data:       analysis,
	})
}

// streamSSE drains the delta stream into the response in arrival order.
// A mid-stream failure is reported as an error event; deltas already sent
// stand, and the client decides whether to keep or discard partial text.
func streamSSE(c fiber.Ctx, stream *coregen.Stream) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		sse := newSSEWriter(w)
		for stream.Next() {
			if err := sse.WriteDelta(stream.Current()); err != nil {
				// Client went away; stop consuming.
				stream.Close()
				return
			}
		}
		if err := stream.Err(); err != nil {
			logger.Error(err, "generate: stream aborted")
			_ = sse.WriteError(err.Error())
			return
		}
		_ = sse.Close()
	})
}

func generationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, coregen.ErrEmptyResponse):
		return apperror.BadGateway(config.ModuleGenerate, c, status.GenEmptyResponse, err.Error())
	case errors.Is(err, coregen.ErrMalformedOutput):
		return apperror.UnprocessableEntity(config.ModuleGenerate, c, status.GenMalformedOutput, err.Error())
	case errors.Is(err, coregen.ErrGenerationFailed):
		return apperror.BadGateway(config.ModuleGenerate, c, status.GenerationFailed, err.Error())
	default:
		return apperror.InternalError(config.ModuleGenerate, c, err)
	}
}
