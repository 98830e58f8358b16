package quiz

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/studyai/studyai/internal/model"
)

// The generation backend is a free-text model: its output shape is not
// contractually guaranteed. Parsing therefore never fails. Malformed entries
// degrade to placeholder content instead of disappearing, so a response with
// n entries always yields n question slots (capped at model.QuestionCount).

const (
	placeholderExplanation = "No explanation provided."
)

var defaultOptions = []string{"A", "B", "C", "D"}

var (
	codeFenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	codeFenceClose = regexp.MustCompile("\\s*```$")
	trailingComma  = regexp.MustCompile(`,\s*([\]}])`)
)

// ParseResponse turns a raw quiz payload into a bounded list of questions.
// The payload is one of three variants: an object carrying a "quiz" field,
// a bare array of question-like objects, or a string wrapping a JSON array
// in prose. Anything else yields an empty quiz.
func ParseResponse(raw json.RawMessage) []model.QuizQuestion {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("quiz payload is not JSON", "error", err)
		return nil
	}

	switch t := v.(type) {
	case map[string]any:
		inner, err := json.Marshal(t["quiz"])
		if err != nil {
			return nil
		}
		return ParseResponse(inner)
	case []any:
		return buildQuestions(t)
	case string:
		return ParseText(t)
	default:
		return nil
	}
}

// ParseText extracts a quiz from free-form model output by slicing from the
// first '[' to the last ']' and parsing the result as JSON. Unparseable text
// is a recoverable condition: the result is an empty quiz, never an error.
func ParseText(text string) []model.QuizQuestion {
	entries, ok := extractArray(text)
	if !ok {
		slog.Warn("could not extract quiz JSON from model output")
		return nil
	}
	return buildQuestions(entries)
}

func buildQuestions(entries []any) []model.QuizQuestion {
	if len(entries) > model.QuestionCount {
		entries = entries[:model.QuestionCount]
	}

	questions := make([]model.QuizQuestion, 0, len(entries))
	for i, entry := range entries {
		item, _ := entry.(map[string]any)
		questions = append(questions, buildQuestion(item, i))
	}
	return questions
}

// buildQuestion applies the field defaults: a missing question becomes an
// ordinal label, non-array options become the fixed four-letter placeholder,
// a missing answer stays empty so it can never match a real selection.
func buildQuestion(item map[string]any, idx int) model.QuizQuestion {
	q := model.QuizQuestion{
		Question:    fmt.Sprintf("Question %d", idx+1),
		Options:     defaultOptions,
		Explanation: placeholderExplanation,
	}

	if s, ok := item["question"].(string); ok && s != "" {
		q.Question = s
	}
	if opts, ok := item["options"].([]any); ok {
		q.Options = stringify(opts)
	}
	if s, ok := item["answer"].(string); ok {
		q.Answer = s
	}
	if s, ok := item["explanation"].(string); ok && s != "" {
		q.Explanation = s
	}
	return q
}

func stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprintf("%v", v))
	}
	return out
}

// extractArray locates a JSON array inside free text. Code fences are
// stripped first, then the text between the first '[' and the last ']' is
// parsed, with one repair attempt for trailing commas.
func extractArray(text string) ([]any, bool) {
	text = strings.TrimSpace(text)
	text = codeFenceOpen.ReplaceAllString(text, "")
	text = codeFenceClose.ReplaceAllString(text, "")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	candidate := text[start : end+1]
	var entries []any
	if err := json.Unmarshal([]byte(candidate), &entries); err == nil {
		return entries, true
	}

	repaired := trailingComma.ReplaceAllString(candidate, "$1")
	if err := json.Unmarshal([]byte(repaired), &entries); err == nil {
		return entries, true
	}
	return nil, false
}

// ExtractStrings pulls a list of strings out of model output for the subtopic
// route. Array items may be bare strings or objects carrying a title-like
// field. When no array can be found the non-empty lines of the text are used
// instead. Entries are trimmed and deduplicated, preserving order.
func ExtractStrings(text string) []string {
	var items []string

	if entries, ok := extractArray(text); ok {
		for _, entry := range entries {
			switch t := entry.(type) {
			case string:
				items = append(items, t)
			case map[string]any:
				for _, key := range []string{"title", "name", "subtopic"} {
					if s, ok := t[key].(string); ok {
						items = append(items, s)
						break
					}
				}
			}
		}
	} else {
		for _, line := range strings.Split(text, "\n") {
			items = append(items, strings.Trim(line, "-•* \t\r"))
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
