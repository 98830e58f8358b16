package pdf

import (
	"bytes"
	"testing"

	"github.com/studyai/studyai/internal/model"
)

func TestRender(t *testing.T) {
	payload := model.SessionExport{
		Topic:       "Graphs",
		Subtopic:    "Trees",
		Difficulty:  model.DifficultyMedium,
		Explanation: "First paragraph.\n\nSecond paragraph.",
		Quiz: []model.QuizQuestion{
			{
				Question:    "What is a tree?",
				Options:     []string{"A connected acyclic graph", "A cycle", "A clique", "A path"},
				Answer:      "A connected acyclic graph",
				Explanation: "Trees are connected and acyclic.",
			},
		},
		Answers:       model.AnswerMap{0: "A cycle"},
		ScoreRaw:      0,
		ScoreWeighted: 0,
		GeneratedAt:   "2025-03-14T09:26:53Z",
	}

	data, err := Render(payload)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render returned no bytes")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header: %q", data[:8])
	}
}

func TestRenderEmptySession(t *testing.T) {
	// The exporter guards empty sessions; the renderer itself must still
	// handle a payload with no quiz without failing.
	data, err := Render(model.SessionExport{Topic: "T", Explanation: "only text"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render returned no bytes")
	}
}
