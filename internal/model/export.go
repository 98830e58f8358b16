package model

// SessionExport is the wire payload sent to the PDF renderer and written by
// the export subcommand. Field names match what the original web client posts
// to /export_session_pdf.
type SessionExport struct {
	Topic         string         `json:"topic"`
	Subtopic      string         `json:"subtopic"`
	Difficulty    Difficulty     `json:"difficulty"`
	Explanation   string         `json:"explanation"`
	Quiz          []QuizQuestion `json:"quiz"`
	Answers       AnswerMap      `json:"answers"`
	ScoreRaw      int            `json:"scoreRaw"`
	ScoreWeighted int            `json:"scoreWeighted"`
	GeneratedAt   string         `json:"generatedAt"`
}
