// Package prompts builds the instruction strings sent to the generation
// backend. Builders are pure functions of their inputs; the backend's actual
// compliance with the requested shape is enforced downstream by the quiz
// parser, not here.
package prompts

import (
	"fmt"
	"strings"

	"github.com/studyai/studyai/internal/model"
)

// System messages per route.
const (
	SubtopicsSystem   = "You are an academic assistant. Output strictly a valid JSON array only."
	ExplanationSystem = "You are a patient teaching assistant that writes long helpful explanations."
	QuizSystem        = "You are an expert quiz generator. Output strictly valid JSON array of objects."
)

// Seed derives the generation seed from the topic and the chosen subtopic.
// Sentinel or empty subtopics leave the topic unnarrowed.
func Seed(topic, subtopic string) string {
	if subtopic == "" || subtopic == model.SubtopicNone {
		return topic
	}
	return topic + " - " + subtopic
}

// Subtopics asks for candidate subtopics of a topic as a JSON string array.
func Subtopics(topic string) string {
	return fmt.Sprintf(
		"List 10 concise and important subtopics for the topic: '%s'. "+
			"Respond only as a JSON array of strings, for example: [\"A\",\"B\",...].",
		topic,
	)
}

// Explanation asks for a structured, example-bearing explanation of the seed,
// at least ~300 words, with subheadings allowed.
func Explanation(seed string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Explain %q thoroughly.\n\n", seed)
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Provide a clear, structured explanation with examples, intuition, and practical notes.\n")
	sb.WriteString("- Make the explanation detailed (aim for 300+ words).\n")
	sb.WriteString("- Use simple language and subheadings where appropriate.\n")
	sb.WriteString("- If you use a technical term, briefly define it.\n\n")
	sb.WriteString("Return only the explanation text (no JSON wrapper required).")
	return sb.String()
}

// Quiz asks for exactly count multiple-choice questions about the seed,
// calibrated to the difficulty tier, returned as a bare JSON array of objects
// with the question/options/answer/explanation shape.
func Quiz(seed string, difficulty model.Difficulty, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create %d multiple-choice questions (MCQs) about %q.\n\n", count, seed)
	sb.WriteString("Each question must be an object with keys: \"question\" (string), ")
	sb.WriteString("\"options\" (array of 4 strings), ")
	sb.WriteString("\"answer\" (the correct option string exactly matching one of the options), and ")
	sb.WriteString("\"explanation\" (1-2 sentences explaining the correct answer).\n\n")
	fmt.Fprintf(&sb, "Make questions suitable for %s difficulty.\n\n", difficulty)
	fmt.Fprintf(&sb, "Return strictly ONLY a valid JSON array of %d objects (no extra text, no markdown). Example:\n", count)
	sb.WriteString(`[{"question":"...","options":["A","B","C","D"],"answer":"A","explanation":"..."}, ...]`)
	return sb.String()
}
