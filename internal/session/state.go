package session

import (
	"maps"
	"slices"

	"github.com/pdfquiz/pdfquiz/internal/quizgen"
)

// Phase is where the session is in the quiz lifecycle.
type Phase int

const (
	PhaseIdle       Phase = iota // No quiz; a file may be selected and submitted
	PhaseExtracting              // Page text is being extracted
	PhaseGenerating              // The model is writing the questions
	PhaseReady                   // Quiz shown, answers accepted
	PhaseGraded                  // Score shown, answers frozen
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExtracting:
		return "extracting"
	case PhaseGenerating:
		return "generating"
	case PhaseReady:
		return "ready"
	case PhaseGraded:
		return "graded"
	default:
		return "unknown"
	}
}

// Busy reports whether a long-running operation owns the session.
func (p Phase) Busy() bool {
	return p == PhaseExtracting || p == PhaseGenerating
}

// SourceFile is the document the user picked.
type SourceFile struct {
	Name string `json:"name"`
	// Data is not persisted; a resumed session only needs the pages.
	Data []byte `json:"-"`
}

// Session is the state of one user's quiz.
type Session struct {
	ID    string `json:"id"`
	Phase Phase  `json:"phase"`

	SourceFile     *SourceFile          `json:"source_file,omitempty"`
	ExtractedPages []string             `json:"extracted_pages,omitempty"`
	QuestionSet    *quizgen.QuestionSet `json:"question_set,omitempty"`

	// Answers is keyed by question index.
	Answers map[int]string `json:"answers"`

	Graded bool `json:"graded"`
	Score  int  `json:"score"`

	// Correct holds the per-question outcome once graded.
	Correct []bool `json:"correct,omitempty"`

	// LastError is the user-facing message of the most recent failure.
	LastError string `json:"last_error,omitempty"`
}

// Total is the number of questions in the current set.
func (s *Session) Total() int {
	if s.QuestionSet == nil {
		return 0
	}
	return len(s.QuestionSet.Questions)
}

// clone returns a deep copy of s.
func (s *Session) clone() Session {
	c := s.light()
	if s.SourceFile != nil {
		c.SourceFile.Data = slices.Clone(s.SourceFile.Data)
	}
	c.ExtractedPages = slices.Clone(s.ExtractedPages)
	return c
}

// light copies s without the file bytes and the page text.
func (s *Session) light() Session {
	c := *s
	if s.SourceFile != nil {
		c.SourceFile = &SourceFile{Name: s.SourceFile.Name}
	}
	c.ExtractedPages = nil
	if s.QuestionSet != nil {
		set := quizgen.QuestionSet{Questions: make([]quizgen.Question, len(s.QuestionSet.Questions))}
		for i, q := range s.QuestionSet.Questions {
			q.Options = slices.Clone(q.Options)
			set.Questions[i] = q
		}
		c.QuestionSet = &set
	}
	c.Answers = maps.Clone(s.Answers)
	if c.Answers == nil {
		c.Answers = map[int]string{}
	}
	c.Correct = slices.Clone(s.Correct)
	return c
}

// clearQuiz drops the question set and all progress on it.
func (s *Session) clearQuiz() {
	s.QuestionSet = nil
	s.clearProgress()
}

// clearProgress drops answers and grading but keeps the question set.
func (s *Session) clearProgress() {
	s.Answers = map[int]string{}
	s.Graded = false
	s.Score = 0
	s.Correct = nil
}
