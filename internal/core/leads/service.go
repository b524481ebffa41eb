package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"training-copilot/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Lead is one captured registration. All four identity fields are required.
type Lead struct {
	WeChat    string `json:"wechat" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Company   string `json:"company" validate:"required"`
	Contact   string `json:"contact" validate:"required"`
	Timestamp string `json:"timestamp"`
}

// Service appends leads to a flat JSONL event log and optionally forwards
// them to a collection webhook. Forwarding is fire-and-forget; its outcome
// never affects the caller.
type Service struct {
	logPath    string
	forwardURL string
	validate   *validator.Validate
	client     *http.Client
}

func NewService(logPath, forwardURL string) *Service {
	return &Service{
		logPath:    logPath,
		forwardURL: forwardURL,
		validate:   validator.New(),
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Submit validates the lead, stamps it if needed, and records it.
func (s *Service) Submit(ctx context.Context, lead Lead) error {
	if err := s.validate.Struct(lead); err != nil {
		return err
	}
	if lead.Timestamp == "" {
		lead.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.appendLog(lead); err != nil {
		logger.Error(err, "leads: event log append failed")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"name":    lead.Name,
		"company": lead.Company,
	}).Info("leads: captured")

	if s.forwardURL != "" {
		// Fire and forget
		go s.forward(lead)
	}
	return nil
}

func (s *Service) appendLog(lead Lead) error {
	if dir := filepath.Dir(s.logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(lead)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

func (s *Service) forward(lead Lead) {
	body, err := json.Marshal(lead)
	if err != nil {
		return
	}
	resp, err := s.client.Post(s.forwardURL, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Error(err, "leads: forward failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warn("leads: forward returned status %d", resp.StatusCode)
	}
}
