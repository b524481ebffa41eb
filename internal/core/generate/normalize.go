package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Wrapper field names probed, in priority order, when a list-shaped result
// arrives wrapped in an object.
var listWrapperFields = []string{"questions", "data", "items", "list"}

// NormalizeQuizItems defensively parses model output that should be a JSON
// array of quiz items. Object-wrapped arrays are unwrapped via known field
// names; an object with none of them degrades to an empty list, since an
// empty quiz is safer than a hard failure. Unparsable input fails with
// ErrMalformedOutput.
func NormalizeQuizItems(raw string) ([]QuizItem, error) {
	cleaned := stripCodeFences(raw)

	var items []QuizItem
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return normalizeItems(items), nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	for _, field := range listWrapperFields {
		inner, ok := wrapper[field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("%w: field %q is not an item list: %v", ErrMalformedOutput, field, err)
		}
		return normalizeItems(items), nil
	}

	// Object without a known wrapper field: degraded empty result.
	return []QuizItem{}, nil
}

// normalizeItems enforces the true/false option convention. Unknown kinds
// pass through untouched.
func normalizeItems(items []QuizItem) []QuizItem {
	if items == nil {
		return []QuizItem{}
	}
	for i := range items {
		if items[i].Kind == KindTrueFalse {
			items[i].OptionA = TrueFalseOptionA
			items[i].OptionB = TrueFalseOptionB
			items[i].OptionC = ""
			items[i].OptionD = ""
		}
	}
	return items
}

// NormalizeFeedback parses model output that should be a single feedback
// analysis object. No unwrapping is attempted: a missing analysis object has
// no sensible default, so any shape mismatch is a hard failure. Sentiment
// percentages are taken as-is and may not sum to 100.
func NormalizeFeedback(raw string) (FeedbackAnalysis, error) {
	cleaned := stripCodeFences(raw)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	tok, err := dec.Token()
	if err != nil {
		return FeedbackAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return FeedbackAnalysis{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedOutput)
	}

	var out FeedbackAnalysis
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return FeedbackAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}

// stripCodeFences removes a surrounding markdown code fence, which some
// backends add around JSON payloads even in json mode.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (```json).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
