package export

import (
	"strings"

	"training-copilot/internal/core/generate"
)

// quizHeaders is the fixed 8-column header spreadsheet tools expect.
var quizHeaders = []string{"题目", "类型", "选项A", "选项B", "选项C", "选项D", "答案", "解析"}

// utf8BOM makes Excel detect UTF-8 when opening the file.
const utf8BOM = "\uFEFF"

// QuizCSV renders quiz items as a CSV document, one data row per item in
// insertion order. Every field is quoted and embedded quotes are doubled.
// The format is fixed, including unconditional quoting, so the rows are
// written directly rather than through encoding/csv.
func QuizCSV(items []generate.QuizItem) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeRow(&b, quizHeaders)
	for _, q := range items {
		b.WriteByte('\n')
		writeRow(&b, []string{
			q.Question,
			q.Kind,
			q.OptionA,
			q.OptionB,
			q.OptionC,
			q.OptionD,
			q.Answer,
			q.Explanation,
		})
	}
	return []byte(b.String())
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
