package parse

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"training-copilot/config"
	"training-copilot/internal/core/extract"
	"training-copilot/pkg/apperror"
	"training-copilot/pkg/apperror/status"
	s3client "training-copilot/pkg/s3"

	"github.com/gofiber/fiber/v3"
)

type handler struct {
	extractor *extract.Extractor
}

type parseRequest struct {
	Base64Data string `json:"base64_data"`
}

type parseResponse struct {
	Success    bool   `json:"success"`
	Text       string `json:"text"`
	Pages      int    `json:"pages"`
	Characters int    `json:"characters"`
	ParseTime  int64  `json:"parse_time_ms"`
	Cached     bool   `json:"cached"`
}

// HandleParse accepts a PDF or plain-text document as multipart "file" or
// as a JSON body with base64 content, and returns the extracted text.
func (h *handler) HandleParse(c fiber.Ctx) error {
	data, err := readDocument(c)
	if err != nil {
		return apperror.BadRequest(config.ModuleParse, c, status.MissingParams, err.Error())
	}
	if len(data) == 0 {
		return apperror.BadRequest(config.ModuleParse, c, status.MissingParams, "empty document")
	}

	doc, err := h.extractor.Extract(c.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrPayloadTooLarge):
			return apperror.PayloadTooLarge(config.ModuleParse, c, status.ParsePayloadTooLarge, err.Error())
		case errors.Is(err, extract.ErrTimeout):
			return apperror.UnprocessableEntity(config.ModuleParse, c, status.ParseTimeout, err.Error())
		case errors.Is(err, extract.ErrExtractionFailed):
			return apperror.UnprocessableEntity(config.ModuleParse, c, status.ParseExtractionFailed, err.Error())
		default:
			return apperror.WriteError(config.ModuleParse, c, fiber.StatusInternalServerError,
				status.ParseInternal.String(), err.Error())
		}
	}

	if s3client.Enabled() && !doc.ServedFromCache {
		// Fire and forget
		go archiveUpload(context.Background(), data)
	}

	return c.JSON(parseResponse{
		Success:    true,
		Text:       doc.Text,
		Pages:      doc.PageCount,
		Characters: doc.CharacterCount,
		ParseTime:  doc.DurationMs,
		Cached:     doc.ServedFromCache,
	})
}

func readDocument(c fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		if fh.Size == 0 {
			return nil, errors.New("empty file")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("cannot open file")
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	var req parseRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, errors.New("file or base64_data is required")
	}
	if req.Base64Data == "" {
		return nil, errors.New("file or base64_data is required")
	}
	data, err := base64.StdEncoding.DecodeString(req.Base64Data)
	if err != nil {
		return nil, errors.New("base64_data is not valid base64")
	}
	return data, nil
}
