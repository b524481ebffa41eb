package generate

import (
	"context"
	"errors"
	"fmt"

	"training-copilot/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// DeltaSource is a single-pass sequence of incremental text deltas as
// produced by a streaming backend call.
type DeltaSource interface {
	// Next advances to the next delta, returning false on exhaustion or error.
	Next() bool
	// Current returns the delta Next moved to.
	Current() string
	// Err returns the terminal error, if any, once Next returned false.
	Err() error
}

// Backend abstracts the chat-completion API: a list of role-tagged messages
// in, either a stream of deltas or a single text payload out.
type Backend interface {
	CompleteStreaming(ctx context.Context, msgs []Message) (DeltaSource, error)
	CompleteStructured(ctx context.Context, msgs []Message, jsonMode bool) (string, error)
}

// OpenAIBackend talks to an OpenAI-compatible chat endpoint (DeepSeek in
// production) through the official SDK.
type OpenAIBackend struct {
	model string
	opts  []option.RequestOption
}

func NewOpenAIBackend(key, model, baseURL string) (*OpenAIBackend, error) {
	if key == "" {
		return nil, errors.New("missing openai key")
	}
	if model == "" {
		return nil, errors.New("missing openai model")
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIBackend{model: model, opts: opts}, nil
}

// CompleteStreaming opens a streaming chat completion. Streaming intents are
// text-only, so message content is always a plain string here.
func (b *OpenAIBackend) CompleteStreaming(ctx context.Context, msgs []Message) (DeltaSource, error) {
	client := openai.NewClient(b.opts...)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)),
	}
	for _, m := range msgs {
		text, ok := m.Content.(string)
		if !ok {
			return nil, fmt.Errorf("streaming message content must be text, got %T", m.Content)
		}
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(text))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(text))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(text))
		}
	}

	stream := client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &openaiDeltaSource{stream: stream}, nil
}

type openaiDeltaSource struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current string
}

func (s *openaiDeltaSource) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			s.current = chunk.Choices[0].Delta.Content
			return true
		}
	}
	return false
}

func (s *openaiDeltaSource) Current() string { return s.current }
func (s *openaiDeltaSource) Err() error      { return s.stream.Err() }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// CompleteStructured issues one non-streaming completion. Messages may carry
// multimodal content parts, so the request body is built by hand and posted
// through the SDK client.
func (b *OpenAIBackend) CompleteStructured(ctx context.Context, msgs []Message, jsonMode bool) (string, error) {
	client := openai.NewClient(b.opts...)

	req := chatRequest{
		Model:    b.model,
		Messages: msgs,
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out chatResponse
	if err := client.Post(ctx, "/chat/completions", req, &out); err != nil {
		logger.Error(err, "openai: chat completion failed")
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
