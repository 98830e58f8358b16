package model

import "time"

// QuestionCount is the fixed number of quiz questions per session.
// Longer model output is truncated, never an error.
const QuestionCount = 15

// SubtopicLimit caps the subtopic list, sentinels included.
const SubtopicLimit = 8

// Sentinel subtopic entries. They always occupy the first two positions of a
// subtopic list and are never sent upstream as a real subtopic.
const (
	SubtopicNone      = "None"
	SubtopicRandomize = "Randomize"
)

// Difficulty represents the quiz difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Weight returns the per-correct-answer point weight for the tier.
// Unrecognized values weigh 1.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// QuizQuestion is a single multiple-choice question. All fields are defaulted
// by the parser, so a question is never missing content, only possibly
// placeholder content.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// AnswerMap maps a 0-based question index to the option text the user picked.
// Absent entries mean unanswered.
type AnswerMap map[int]string

// Session is the aggregate state of one study session. The session manager is
// its exclusive owner; everything else only reads it.
type Session struct {
	ID            string         `json:"id"`
	Topic         string         `json:"topic"`
	Subtopics     []string       `json:"subtopics,omitempty"`
	Subtopic      string         `json:"subtopic"`
	Difficulty    Difficulty     `json:"difficulty"`
	Explanation   string         `json:"explanation"`
	Quiz          []QuizQuestion `json:"quiz"`
	Answers       AnswerMap      `json:"answers"`
	ScoreRaw      int            `json:"scoreRaw"`
	ScoreWeighted int            `json:"scoreWeighted"`
	Revealed      bool           `json:"revealed"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}
