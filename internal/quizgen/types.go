package quizgen

import "encoding/json"

// Kind is the question type as it appears on the wire.
type Kind string

const (
	KindMultipleChoice Kind = "MULTIPLE_CHOICE"
	KindShortAnswer    Kind = "SHORT_ANSWER"
)

// Question is one generated quiz item.
type Question struct {
	Kind Kind `json:"type"`

	// Prompt is the question text.
	Prompt string `json:"question"`

	// Options holds exactly four choices for multiple-choice items, labelled
	// A-D by position, and is empty for short-answer items.
	Options []string `json:"options"`

	// Answer is a letter A-D for multiple-choice items and free text for
	// short-answer items.
	Answer string `json:"answer"`

	// Explanation is shown once the quiz is graded.
	Explanation string `json:"explanation"`
}

// MarshalJSON keeps options an array even when empty.
func (q Question) MarshalJSON() ([]byte, error) {
	type plain Question
	p := plain(q)
	if p.Options == nil {
		p.Options = []string{}
	}
	return json.Marshal(p)
}

// QuestionSet is the generated quiz. The 8 + 2 shape is a contract with
// the model, checked by the validators in strict mode only.
type QuestionSet struct {
	Questions []Question `json:"questions"`
}

func (s QuestionSet) MarshalJSON() ([]byte, error) {
	type plain QuestionSet
	p := plain(s)
	if p.Questions == nil {
		p.Questions = []Question{}
	}
	return json.Marshal(p)
}

// Counts returns the number of multiple-choice and short-answer items.
func (s *QuestionSet) Counts() (mc, sa int) {
	for _, q := range s.Questions {
		switch q.Kind {
		case KindMultipleChoice:
			mc++
		case KindShortAnswer:
			sa++
		}
	}
	return mc, sa
}

// Usage is token accounting reported by the model provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a successful generation.
type Result struct {
	Set   QuestionSet
	Usage Usage
	Model string
}

// Option labels, by position.
var OptionLabels = [...]string{"A", "B", "C", "D"}

const (
	// QuestionCount is the number of questions requested per quiz.
	QuestionCount       = 10
	MultipleChoiceCount = 8
	ShortAnswerCount    = 2
	OptionCount         = 4
)
