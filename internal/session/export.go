package session

import (
	"errors"
	"regexp"
	"time"

	"github.com/studyai/studyai/internal/model"
)

// ErrNoContent means the session has neither an explanation nor a quiz, so
// there is nothing to export.
var ErrNoContent = errors.New("no session content to export")

var whitespaceRuns = regexp.MustCompile(`\s+`)

// BuildExportPayload serializes a session for the PDF renderer. It fails with
// ErrNoContent when both the explanation and the quiz are empty.
func BuildExportPayload(s model.Session) (model.SessionExport, error) {
	if s.Explanation == "" && len(s.Quiz) == 0 {
		return model.SessionExport{}, ErrNoContent
	}

	generatedAt := s.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	return model.SessionExport{
		Topic:         s.Topic,
		Subtopic:      s.Subtopic,
		Difficulty:    s.Difficulty,
		Explanation:   s.Explanation,
		Quiz:          s.Quiz,
		Answers:       s.Answers,
		ScoreRaw:      s.ScoreRaw,
		ScoreWeighted: s.ScoreWeighted,
		GeneratedAt:   generatedAt.Format(time.RFC3339),
	}, nil
}

// ExportFilename builds the download name for a session report:
// StudyAI_{topic with whitespace runs replaced by underscores}_{timestamp}.pdf
func ExportFilename(topic string, generatedAt time.Time) string {
	return "StudyAI_" + whitespaceRuns.ReplaceAllString(topic, "_") + "_" +
		generatedAt.UTC().Format(time.RFC3339) + ".pdf"
}
