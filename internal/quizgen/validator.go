package quizgen

import (
	"fmt"
	"strings"
)

// Validator checks a generated question set against the question
// contract. Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs,
	// e.g. "count", "shape".
	Name() string

	// Validate returns nil if the set passes.
	Validate(set *QuestionSet) *ContractViolation
}

// ContractViolation describes why a question set was rejected.
type ContractViolation struct {
	Validator string
	// Index is the offending question, or -1 for set-level failures.
	Index   int
	Message string
}

func (e *ContractViolation) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
	}
	return fmt.Sprintf("validator %q: question %d: %s", e.Validator, e.Index+1, e.Message)
}

// CountValidator checks for 10 questions, 8 multiple choice and 2 short answer.
type CountValidator struct{}

func (v *CountValidator) Name() string { return "count" }

func (v *CountValidator) Validate(set *QuestionSet) *ContractViolation {
	if len(set.Questions) != QuestionCount {
		return &ContractViolation{
			Validator: v.Name(),
			Index:     -1,
			Message:   fmt.Sprintf("expected %d questions, got %d", QuestionCount, len(set.Questions)),
		}
	}
	mc, sa := set.Counts()
	if mc != MultipleChoiceCount || sa != ShortAnswerCount {
		return &ContractViolation{
			Validator: v.Name(),
			Index:     -1,
			Message: fmt.Sprintf("expected %d multiple choice and %d short answer, got %d and %d",
				MultipleChoiceCount, ShortAnswerCount, mc, sa),
		}
	}
	return nil
}

// ShapeValidator checks each question's fields against its kind.
type ShapeValidator struct{}

func (v *ShapeValidator) Name() string { return "shape" }

func (v *ShapeValidator) Validate(set *QuestionSet) *ContractViolation {
	for i, q := range set.Questions {
		if msg := questionShape(q); msg != "" {
			return &ContractViolation{Validator: v.Name(), Index: i, Message: msg}
		}
	}
	return nil
}

func questionShape(q Question) string {
	if strings.TrimSpace(q.Prompt) == "" {
		return "question is empty"
	}
	if strings.TrimSpace(q.Answer) == "" {
		return "answer is empty"
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return "explanation is empty"
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) != OptionCount {
			return fmt.Sprintf("multiple choice needs %d options, got %d", OptionCount, len(q.Options))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Sprintf("option %s is empty", OptionLabels[j])
			}
		}
		if OptionIndex(q.Answer) < 0 {
			return fmt.Sprintf("multiple choice answer must be A-D, got %q", q.Answer)
		}
	case KindShortAnswer:
		if len(q.Options) != 0 {
			return fmt.Sprintf("short answer must have no options, got %d", len(q.Options))
		}
	default:
		return fmt.Sprintf("unknown question type %q", q.Kind)
	}
	return ""
}

// DistinctOptionsValidator rejects multiple-choice items with repeated options.
type DistinctOptionsValidator struct{}

func (v *DistinctOptionsValidator) Name() string { return "distinct-options" }

func (v *DistinctOptionsValidator) Validate(set *QuestionSet) *ContractViolation {
	for i, q := range set.Questions {
		if q.Kind != KindMultipleChoice {
			continue
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			key := strings.ToLower(strings.TrimSpace(opt))
			if seen[key] {
				return &ContractViolation{
					Validator: v.Name(),
					Index:     i,
					Message:   fmt.Sprintf("duplicate option %q", opt),
				}
			}
			seen[key] = true
		}
	}
	return nil
}
