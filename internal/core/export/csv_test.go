package export

import (
	"strings"
	"testing"

	"training-copilot/internal/core/generate"
)

func TestQuizCSVLayout(t *testing.T) {
	items := []generate.QuizItem{
		{Question: "年假有几天？", Kind: "单选题", OptionA: "5天", OptionB: "10天", OptionC: "15天", OptionD: "20天", Answer: "B", Explanation: "按制度规定。"},
		{Question: "试用期为六个月。", Kind: "判断题", OptionA: "正确", OptionB: "错误", Answer: "B", Explanation: "最长三个月。"},
	}

	out := string(QuizCSV(items))

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Error("output must start with a UTF-8 BOM")
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output must not end with a trailing newline")
	}

	lines := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want header + 2 rows", len(lines))
	}
	if lines[0] != `"题目","类型","选项A","选项B","选项C","选项D","答案","解析"` {
		t.Errorf("header = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"年假有几天？"`) || !strings.Contains(lines[1], `"B"`) {
		t.Errorf("row 1 = %s", lines[1])
	}
	if got := strings.Count(lines[2], ","); got != 7 {
		t.Errorf("row 2 has %d separators, want 7", got)
	}
}

func TestQuizCSVQuotesEveryField(t *testing.T) {
	out := string(QuizCSV([]generate.QuizItem{{Question: "q", Kind: "单选题", Answer: "A", Explanation: "e"}}))
	row := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")[1]

	for i, field := range strings.Split(row, ",") {
		if !strings.HasPrefix(field, `"`) || !strings.HasSuffix(field, `"`) {
			t.Errorf("field %d is not quoted: %s", i, field)
		}
	}
}

func TestQuizCSVDoublesEmbeddedQuotes(t *testing.T) {
	out := string(QuizCSV([]generate.QuizItem{{
		Question: `他说"准时"很重要`, Kind: "单选题", Answer: "A", Explanation: "e",
	}}))

	if !strings.Contains(out, `"他说""准时""很重要"`) {
		t.Errorf("embedded quotes not doubled: %s", out)
	}
}

func TestQuizCSVEmptyList(t *testing.T) {
	out := string(QuizCSV(nil))
	if strings.Count(out, "\n") != 0 {
		t.Errorf("empty export should be header only: %q", out)
	}
	if !strings.Contains(out, "题目") {
		t.Error("header missing")
	}
}
