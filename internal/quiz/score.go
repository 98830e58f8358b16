package quiz

import "github.com/studyai/studyai/internal/model"

// Result holds the outcome of grading one quiz.
type Result struct {
	Correct  int `json:"scoreRaw"`
	Weighted int `json:"scoreWeighted"`
}

// Score grades the full quiz against the answer map. Each correct answer adds
// one to Correct and the difficulty's weight to Weighted. Questions with no
// entry in the answer map are skipped, not counted as wrong matches.
func Score(questions []model.QuizQuestion, answers model.AnswerMap, difficulty model.Difficulty) Result {
	weight := difficulty.Weight()

	var res Result
	for i, q := range questions {
		selected, ok := answers[i]
		if !ok {
			continue
		}
		if Normalize(selected) == Normalize(q.Answer) {
			res.Correct++
			res.Weighted += weight
		}
	}
	return res
}
