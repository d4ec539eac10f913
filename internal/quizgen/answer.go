package quizgen

import "strings"

// CheckAnswer compares a submitted answer with the canonical one after
// trimming whitespace, ignoring case. Both question kinds use the same rule,
// so "a" matches "A" and " 광합성 " matches "광합성".
func CheckAnswer(submitted, canonical string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(canonical))
}

// OptionIndex maps an answer letter A-D (any case, surrounding spaces
// allowed) to its option position, or -1.
func OptionIndex(letter string) int {
	letter = strings.TrimSpace(letter)
	for i, l := range OptionLabels {
		if strings.EqualFold(letter, l) {
			return i
		}
	}
	return -1
}

// Grade scores answers against the set. A missing answer counts as "".
// It returns the number of correct answers and the per-question result.
func Grade(set *QuestionSet, answers map[int]string) (int, []bool) {
	correct := make([]bool, len(set.Questions))
	score := 0
	for i, q := range set.Questions {
		if CheckAnswer(answers[i], q.Answer) {
			correct[i] = true
			score++
		}
	}
	return score, correct
}
