package generate

import (
	"errors"
	"fmt"
	"strings"
)

// ContractKind states what shape of response the caller expects.
type ContractKind int

const (
	// ContractText is unconstrained free text, suitable for streaming.
	ContractText ContractKind = iota
	// ContractQuizList expects a JSON array of quiz items.
	ContractQuizList
	// ContractFeedbackObject expects a single JSON feedback analysis object.
	ContractFeedbackObject
)

// JSONMode reports whether the backend should be asked for json_object output.
func (k ContractKind) JSONMode() bool { return k != ContractText }

// Message is one role-tagged chat message. Content is either a string or a
// []ContentPart for multimodal requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// ModelRequest is a fully built backend request: messages plus the response
// contract the orchestrator and normalizer act on.
type ModelRequest struct {
	Messages []Message
	Contract ContractKind
}

// Default character budgets applied before embedding user-supplied text, to
// respect backend input limits.
const (
	defaultQuizTextBudget     = 15000
	defaultFeedbackTextBudget = 10000
)

// Limits caps the runes of user-supplied text embedded in prompts. Zero or
// negative fields fall back to the defaults.
type Limits struct {
	QuizTextRunes     int
	FeedbackTextRunes int
}

func (l Limits) withDefaults() Limits {
	if l.QuizTextRunes <= 0 {
		l.QuizTextRunes = defaultQuizTextBudget
	}
	if l.FeedbackTextRunes <= 0 {
		l.FeedbackTextRunes = defaultFeedbackTextBudget
	}
	return l
}

var errNoQuizSource = errors.New("quiz request needs source text or an inline document")

// BuildRequest assembles the prompt and response contract for an intent.
// Pure transformation; no side effects.
func BuildRequest(intent Intent, limits Limits) (ModelRequest, error) {
	limits = limits.withDefaults()
	switch intent.Kind {
	case IntentCourseOutline:
		if intent.Course == nil {
			return ModelRequest{}, fmt.Errorf("missing course params")
		}
		return ModelRequest{
			Messages: []Message{{Role: "user", Content: courseOutlinePrompt(*intent.Course)}},
			Contract: ContractText,
		}, nil
	case IntentQuiz:
		if intent.Quiz == nil {
			return ModelRequest{}, fmt.Errorf("missing quiz params")
		}
		return buildQuizRequest(*intent.Quiz, limits.QuizTextRunes)
	case IntentFeedbackAnalysis:
		if intent.Feedback == nil {
			return ModelRequest{}, fmt.Errorf("missing feedback params")
		}
		return ModelRequest{
			Messages: []Message{{Role: "user", Content: feedbackPrompt(*intent.Feedback, limits.FeedbackTextRunes)}},
			Contract: ContractFeedbackObject,
		}, nil
	case IntentSurvey:
		if intent.Survey == nil {
			return ModelRequest{}, fmt.Errorf("missing survey params")
		}
		return ModelRequest{
			Messages: []Message{{Role: "user", Content: surveyPrompt(*intent.Survey)}},
			Contract: ContractText,
		}, nil
	case IntentOpsCopy:
		if intent.Ops == nil {
			return ModelRequest{}, fmt.Errorf("missing ops params")
		}
		return ModelRequest{
			Messages: []Message{{Role: "user", Content: opsCopyPrompt(*intent.Ops)}},
			Contract: ContractText,
		}, nil
	default:
		return ModelRequest{}, fmt.Errorf("unknown intent kind %q", intent.Kind)
	}
}

func buildQuizRequest(p QuizParams, textBudget int) (ModelRequest, error) {
	msgs := []Message{{Role: "system", Content: quizSystemPrompt(p)}}

	switch {
	case p.Inline != nil && p.Inline.Base64 != "" && p.Inline.MimeType != "":
		msgs = append(msgs, Message{
			Role: "user",
			Content: []ContentPart{
				{
					Type: "image_url",
					ImageURL: &ImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", p.Inline.MimeType, p.Inline.Base64),
					},
				},
				{
					Type: "text",
					Text: fmt.Sprintf("Generate %d training quiz questions based on this document.", p.Count),
				},
			},
		})
	case strings.TrimSpace(p.SourceText) != "":
		msgs = append(msgs, Message{
			Role: "user",
			Content: fmt.Sprintf("Generate %d training quiz questions based on this content: %s",
				p.Count, truncateRunes(p.SourceText, textBudget)),
		})
	default:
		return ModelRequest{}, errNoQuizSource
	}

	return ModelRequest{Messages: msgs, Contract: ContractQuizList}, nil
}

func courseOutlinePrompt(p CourseParams) string {
	var b strings.Builder
	b.WriteString("Role: Professional Corporate Training Specialist.\n")
	b.WriteString("Task: Create a structured training course outline in Simplified Chinese.\n")
	b.WriteString(fmt.Sprintf("Topic: %s\n", p.Topic))
	b.WriteString(fmt.Sprintf("Target Audience: %s\n", p.Audience))
	b.WriteString(fmt.Sprintf("Duration: %s\n", p.Duration))
	b.WriteString(fmt.Sprintf("Style/Tone: %s\n\n", p.Style))
	b.WriteString("Output Format: Markdown.\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- Use H2 (##) for main sections.\n")
	b.WriteString("- Use H3 (###) for subsections.\n")
	b.WriteString("- Use bullet points for details.\n")
	b.WriteString("- Structure:\n")
	b.WriteString("  1. 课程标题 (Title)\n")
	b.WriteString("  2. 课程背景与目标 (Context & Objectives)\n")
	b.WriteString("  3. 详细大纲 (Detailed Agenda with time allocation)\n")
	b.WriteString("  4. 教学方法 (Methodology)\n")
	b.WriteString("  5. 总结 (Summary)\n\n")
	b.WriteString("Language: Simplified Chinese (简体中文).\n")
	b.WriteString("Do not include conversational filler. Start directly with the markdown content.\n")
	return b.String()
}

func quizSystemPrompt(p QuizParams) string {
	var b strings.Builder
	b.WriteString("Role: Expert Exam Question Creator.\n")
	b.WriteString("Language: Simplified Chinese (简体中文).\n")
	b.WriteString(fmt.Sprintf("Difficulty: %s.\n\n", p.Difficulty))
	b.WriteString("Requirements:\n")
	b.WriteString("- Mix of Single Choice (单选题) and True/False (判断题).\n")
	b.WriteString("- For True/False, Option A should be \"正确\", Option B should be \"错误\".\n")
	b.WriteString("- Provide clear explanations.\n\n")
	b.WriteString("Output Format: JSON array with the following structure:\n")
	b.WriteString(`[
  {
    "question": "Question text in Simplified Chinese",
    "type": "单选题 or 判断题 or 多选题",
    "optionA": "Option A text",
    "optionB": "Option B text",
    "optionC": "Option C text (optional)",
    "optionD": "Option D text (optional)",
    "answer": "The correct option (e.g., A, B, C, D)",
    "explanation": "Explanation in Simplified Chinese"
  }
]
`)
	return b.String()
}

func feedbackPrompt(p FeedbackParams, textBudget int) string {
	var b strings.Builder
	b.WriteString("Role: HR Data Analyst.\n")
	b.WriteString("Task: Analyze the following training feedback comments.\n")
	b.WriteString("Language: Simplified Chinese (简体中文).\n")
	b.WriteString(fmt.Sprintf("Feedback Data: %q\n\n", truncateRunes(p.Feedback, textBudget)))
	b.WriteString("Goal: Determine sentiment distribution, extract keywords, and provide 3 key improvement suggestions.\n\n")
	b.WriteString("Output Format: JSON object with the following structure:\n")
	b.WriteString(`{
  "sentiment": {
    "positive": <integer 0-100>,
    "neutral": <integer 0-100>,
    "negative": <integer 0-100>
  },
  "keywords": ["keyword1", "keyword2", ...],
  "suggestions": ["suggestion1", "suggestion2", "suggestion3"]
}
`)
	return b.String()
}

func surveyPrompt(p SurveyParams) string {
	var b strings.Builder
	b.WriteString("Role: Professional Survey Designer.\n")
	b.WriteString("Task: Design a training survey questionnaire for Tencent Questionnaire (腾讯问卷).\n")
	b.WriteString(fmt.Sprintf("Training Topic: %s\n", p.Topic))
	b.WriteString(fmt.Sprintf("Survey Type: %s\n", p.Type))
	b.WriteString("Language: Simplified Chinese (简体中文).\n\n")
	b.WriteString("Output Format: Markdown text that is easy to copy.\n")
	b.WriteString("Structure:\n")
	b.WriteString("1. Title & Introduction (Welcoming and explaining purpose)\n")
	b.WriteString("2. Questions (List 5-8 key questions).\n")
	b.WriteString("   Format each question as:\n")
	b.WriteString("   [Question Type: Single Choice/Multiple Choice/Text/Rating]\n")
	b.WriteString("   Q: [Question Text]\n")
	b.WriteString("   Options: [Option 1, Option 2...]\n")
	b.WriteString("3. Closing (Thank you note).\n")
	return b.String()
}

func opsCopyPrompt(p OpsParams) string {
	var b strings.Builder
	b.WriteString("Role: Internal Comms Specialist.\n")
	b.WriteString(fmt.Sprintf("Task: Write a %s for a training program.\n", p.Type))
	b.WriteString("Language: Simplified Chinese (简体中文).\n")
	b.WriteString(fmt.Sprintf("Context/Details: %s\n", p.Context))
	b.WriteString(fmt.Sprintf("Tone: %s\n\n", p.Tone))
	b.WriteString("Output: Professional, ready-to-send copy.\n")
	return b.String()
}

// truncateRunes cuts s to at most n runes without splitting multi-byte sequences.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
