package session

import (
	"math/rand"

	"github.com/studyai/studyai/internal/model"
)

// SubtopicList shapes raw model-discovered subtopics into the list offered to
// the user: the two sentinel entries first, then real subtopics, capped at
// model.SubtopicLimit entries total.
func SubtopicList(subtopics []string) []string {
	list := append([]string{model.SubtopicNone, model.SubtopicRandomize}, subtopics...)
	if len(list) > model.SubtopicLimit {
		list = list[:model.SubtopicLimit]
	}
	return list
}

// ResolveSubtopic turns the user's selection into one concrete subtopic, or
// the None sentinel. "Randomize" draws uniformly from the real entries (after
// the two sentinels) and falls back to None when there are none. The draw is
// re-rolled on every call; callers must not memoize the result.
func ResolveSubtopic(selection string, list []string) string {
	switch selection {
	case model.SubtopicNone, "":
		return model.SubtopicNone
	case model.SubtopicRandomize:
		if len(list) <= 2 {
			return model.SubtopicNone
		}
		real := list[2:]
		return real[rand.Intn(len(real))]
	default:
		return selection
	}
}
