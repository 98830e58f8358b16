package quiz

import "strings"

// Normalize canonicalizes an answer string for comparison: trim, lower-case,
// unify curly apostrophes with straight ones, collapse whitespace runs.
// Two values count as the same answer iff their normalized forms are equal.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, "’", "'")
	return strings.Join(strings.Fields(s), " ")
}
