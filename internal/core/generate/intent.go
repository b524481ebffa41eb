package generate

// IntentKind tags the generation intents the service understands.
type IntentKind string

const (
	IntentCourseOutline    IntentKind = "course_outline"
	IntentQuiz             IntentKind = "quiz"
	IntentFeedbackAnalysis IntentKind = "feedback_analysis"
	IntentSurvey           IntentKind = "survey"
	IntentOpsCopy          IntentKind = "ops_copy"
)

// CourseParams describes a course outline request.
type CourseParams struct {
	Topic    string `json:"topic"`
	Audience string `json:"audience"`
	Duration string `json:"duration"`
	Style    string `json:"style"`
}

// InlinePayload is a base64-encoded document or image attached directly to
// a quiz request instead of pre-extracted text.
type InlinePayload struct {
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64"`
}

// QuizParams describes a quiz request. Exactly one of SourceText and Inline
// is used; when both are present the inline payload wins.
type QuizParams struct {
	SourceText string         `json:"text"`
	Inline     *InlinePayload `json:"inline,omitempty"`
	Count      int            `json:"count"`
	Difficulty string         `json:"difficulty"`
}

// FeedbackParams carries the raw feedback corpus to analyze.
type FeedbackParams struct {
	Feedback string `json:"feedback"`
}

// SurveyParams describes a survey template request.
type SurveyParams struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

// OpsParams describes an operational copy request.
type OpsParams struct {
	Type    string `json:"type"`
	Context string `json:"context"`
	Tone    string `json:"tone"`
}

// Intent is a tagged variant over the five generation intents. Exactly one
// params field matching Kind is set; one Intent maps to one backend call.
type Intent struct {
	Kind     IntentKind
	Course   *CourseParams
	Quiz     *QuizParams
	Feedback *FeedbackParams
	Survey   *SurveyParams
	Ops      *OpsParams
}

// QuizItem is one generated question. Kind normally maps to one of the three
// known enumerants; unknown strings from the backend are kept verbatim so
// prompt drift does not break display layers.
type QuizItem struct {
	Question    string `json:"question"`
	Kind        string `json:"type"`
	OptionA     string `json:"optionA,omitempty"`
	OptionB     string `json:"optionB,omitempty"`
	OptionC     string `json:"optionC,omitempty"`
	OptionD     string `json:"optionD,omitempty"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// Known quiz item kinds.
const (
	KindSingleChoice   = "单选题"
	KindTrueFalse      = "判断题"
	KindMultipleChoice = "多选题"
)

// True/false options are fixed by convention.
const (
	TrueFalseOptionA = "正确"
	TrueFalseOptionB = "错误"
)

// SentimentSplit holds independent 0-100 percentages. They come straight
// from the model and are not guaranteed to sum to 100.
type SentimentSplit struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// FeedbackAnalysis is the structured result of analyzing a feedback corpus.
type FeedbackAnalysis struct {
	Sentiment   SentimentSplit `json:"sentiment"`
	Keywords    []string       `json:"keywords"`
	Suggestions []string       `json:"suggestions"`
}
