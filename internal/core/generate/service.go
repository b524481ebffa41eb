package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"training-copilot/pkg/logger"
)

var (
	// ErrGenerationFailed covers backend errors in either mode.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmptyResponse means the backend returned no content.
	ErrEmptyResponse = errors.New("model returned no content")
	// ErrMalformedOutput means structured output could not be parsed into
	// the expected shape. Not retried here; the caller may resubmit.
	ErrMalformedOutput = errors.New("model output is not valid for the expected shape")
)

// Service dispatches built requests to the model backend. Streaming mode is
// used for long-form prose meant for progressive display; structured mode
// for output that round-trips through the normalizer.
type Service struct {
	backend Backend
	timeout time.Duration
	limits  Limits
}

func NewService(backend Backend, timeout time.Duration, limits Limits) *Service {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Service{backend: backend, timeout: timeout, limits: limits.withDefaults()}
}

// StreamGenerate dispatches an intent in streaming mode. The per-call
// deadline covers the whole exchange; on expiry mid-stream the sequence
// ends with a generation failure and delivered deltas stand.
func (s *Service) StreamGenerate(ctx context.Context, intent Intent) (*Stream, error) {
	req, err := BuildRequest(intent, s.limits)
	if err != nil {
		return nil, err
	}
	if req.Contract != ContractText {
		return nil, fmt.Errorf("intent %q expects structured output, not a stream", intent.Kind)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	src, err := s.backend.CompleteStreaming(ctx, req.Messages)
	if err != nil {
		cancel()
		logger.Error(err, "generate: open stream failed for %s", intent.Kind)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return newStream(src, cancel), nil
}

// Generate dispatches an intent in structured mode and returns the raw text
// payload for the normalizer.
func (s *Service) Generate(ctx context.Context, intent Intent) (string, error) {
	req, err := BuildRequest(intent, s.limits)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.backend.CompleteStructured(ctx, req.Messages, req.Contract.JSONMode())
	if err != nil {
		logger.Error(err, "generate: structured call failed for %s", intent.Kind)
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyResponse
	}
	return raw, nil
}

// StreamCourseOutline streams a markdown course outline.
func (s *Service) StreamCourseOutline(ctx context.Context, p CourseParams) (*Stream, error) {
	return s.StreamGenerate(ctx, Intent{Kind: IntentCourseOutline, Course: &p})
}

// StreamOpsCopy streams operational copy.
func (s *Service) StreamOpsCopy(ctx context.Context, p OpsParams) (*Stream, error) {
	return s.StreamGenerate(ctx, Intent{Kind: IntentOpsCopy, Ops: &p})
}

// GenerateSurvey returns a ready-to-copy survey template as markdown text.
func (s *Service) GenerateSurvey(ctx context.Context, p SurveyParams) (string, error) {
	return s.Generate(ctx, Intent{Kind: IntentSurvey, Survey: &p})
}

// GenerateQuiz produces an ordered quiz item list from source text or an
// inline document payload.
func (s *Service) GenerateQuiz(ctx context.Context, p QuizParams) ([]QuizItem, error) {
	raw, err := s.Generate(ctx, Intent{Kind: IntentQuiz, Quiz: &p})
	if err != nil {
		return nil, err
	}
	return NormalizeQuizItems(raw)
}

// AnalyzeFeedback produces a feedback analysis record from a raw corpus.
func (s *Service) AnalyzeFeedback(ctx context.Context, p FeedbackParams) (FeedbackAnalysis, error) {
	raw, err := s.Generate(ctx, Intent{Kind: IntentFeedbackAnalysis, Feedback: &p})
	if err != nil {
		return FeedbackAnalysis{}, err
	}
	return NormalizeFeedback(raw)
}
