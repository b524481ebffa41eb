package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// sliceDeltaSource replays a fixed delta sequence and then a terminal error.
type sliceDeltaSource struct {
	deltas []string
	final  error
	idx    int
}

func (s *sliceDeltaSource) Next() bool {
	if s.idx >= len(s.deltas) {
		return false
	}
	s.idx++
	return true
}

func (s *sliceDeltaSource) Current() string { return s.deltas[s.idx-1] }
func (s *sliceDeltaSource) Err() error      { return s.final }

type mockBackend struct {
	deltas     []string
	streamErr  error
	openErr    error
	structured string
	structErr  error

	gotJSONMode bool
	gotMessages []Message
}

func (m *mockBackend) CompleteStreaming(ctx context.Context, msgs []Message) (DeltaSource, error) {
	m.gotMessages = msgs
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &sliceDeltaSource{deltas: m.deltas, final: m.streamErr}, nil
}

func (m *mockBackend) CompleteStructured(ctx context.Context, msgs []Message, jsonMode bool) (string, error) {
	m.gotMessages = msgs
	m.gotJSONMode = jsonMode
	return m.structured, m.structErr
}

func TestStreamCourseOutlineDeliversDeltasInOrder(t *testing.T) {
	backend := &mockBackend{deltas: []string{"## 课程标题\n", "内容第一段"}}
	svc := NewService(backend, time.Minute, Limits{})

	stream, err := svc.StreamCourseOutline(context.Background(), CourseParams{
		Topic: "沟通技巧", Audience: "管理层", Duration: "2小时", Style: "互动",
	})
	if err != nil {
		t.Fatalf("StreamCourseOutline: %v", err)
	}
	defer stream.Close()

	var got []string
	for stream.Next() {
		got = append(got, stream.Current())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if strings.Join(got, "") != "## 课程标题\n内容第一段" {
		t.Errorf("deltas out of order or lost: %q", got)
	}
}

func TestStreamErrorKeepsDeliveredDeltas(t *testing.T) {
	backend := &mockBackend{
		deltas:    []string{"部分", "输出"},
		streamErr: errors.New("connection reset"),
	}
	svc := NewService(backend, time.Minute, Limits{})

	stream, err := svc.StreamOpsCopy(context.Background(), OpsParams{Type: "开班通知", Context: "c", Tone: "正式"})
	if err != nil {
		t.Fatalf("StreamOpsCopy: %v", err)
	}

	var got []string
	for stream.Next() {
		got = append(got, stream.Current())
	}
	if len(got) != 2 {
		t.Errorf("delivered deltas = %v, want both kept", got)
	}
	if !errors.Is(stream.Err(), ErrGenerationFailed) {
		t.Errorf("Err() = %v, want ErrGenerationFailed", stream.Err())
	}
	if stream.Next() {
		t.Error("a finished stream must stay exhausted")
	}
}

func TestStreamOpenFailure(t *testing.T) {
	backend := &mockBackend{openErr: errors.New("dial tcp: refused")}
	svc := NewService(backend, time.Minute, Limits{})

	_, err := svc.StreamCourseOutline(context.Background(), CourseParams{Topic: "t"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestStreamGenerateRejectsStructuredIntents(t *testing.T) {
	svc := NewService(&mockBackend{}, time.Minute, Limits{})

	_, err := svc.StreamGenerate(context.Background(), Intent{
		Kind: IntentQuiz,
		Quiz: &QuizParams{SourceText: "text", Count: 3},
	})
	if err == nil {
		t.Fatal("structured intents must not be streamable")
	}
}

func TestGenerateQuizEndToEnd(t *testing.T) {
	backend := &mockBackend{
		structured: `{"questions":[{"question":"q1","type":"判断题","optionA":"对","optionB":"错","answer":"A","explanation":"e"}]}`,
	}
	svc := NewService(backend, time.Minute, Limits{})

	items, err := svc.GenerateQuiz(context.Background(), QuizParams{SourceText: "制度文本", Count: 1, Difficulty: "中等"})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if !backend.gotJSONMode {
		t.Error("quiz generation should request json mode")
	}
	if len(items) != 1 || items[0].OptionA != TrueFalseOptionA {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	backend := &mockBackend{structured: "   \n"}
	svc := NewService(backend, time.Minute, Limits{})

	_, err := svc.GenerateQuiz(context.Background(), QuizParams{SourceText: "text", Count: 1})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateBackendFailure(t *testing.T) {
	backend := &mockBackend{structErr: errors.New("upstream 500")}
	svc := NewService(backend, time.Minute, Limits{})

	_, err := svc.AnalyzeFeedback(context.Background(), FeedbackParams{Feedback: "不错"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestAnalyzeFeedbackMalformedOutput(t *testing.T) {
	backend := &mockBackend{structured: `["not","an","object"]`}
	svc := NewService(backend, time.Minute, Limits{})

	_, err := svc.AnalyzeFeedback(context.Background(), FeedbackParams{Feedback: "一般"})
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestGenerateSurveyReturnsRawMarkdown(t *testing.T) {
	backend := &mockBackend{structured: "# 培训问卷\n\nQ1 ..."}
	svc := NewService(backend, time.Minute, Limits{})

	out, err := svc.GenerateSurvey(context.Background(), SurveyParams{Topic: "安全生产", Type: "课后评估"})
	if err != nil {
		t.Fatalf("GenerateSurvey: %v", err)
	}
	if backend.gotJSONMode {
		t.Error("survey generation should not request json mode")
	}
	if !strings.HasPrefix(out, "# 培训问卷") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNewServiceDefaultTimeout(t *testing.T) {
	svc := NewService(&mockBackend{}, 0, Limits{})
	if svc.timeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s default", svc.timeout)
	}
}
