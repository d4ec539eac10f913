// Package quiz is the screen where questions are answered, graded and
// reviewed.
package quiz

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/router"
	"github.com/pdfquiz/pdfquiz/internal/screen"
	"github.com/pdfquiz/pdfquiz/internal/session"
	"github.com/pdfquiz/pdfquiz/internal/ui/components"
	"github.com/pdfquiz/pdfquiz/internal/ui/layout"
)

// QuizScreen renders the session's question set. All state lives in the
// controller; the screen only tracks which question is shown.
type QuizScreen struct {
	ctrl    *session.Controller
	index   int
	mc      components.MultiChoice
	input   components.TextInput
	menu    components.Menu
	spinner components.Spinner
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a quiz screen for a controller in Ready or Graded.
func New(ctrl *session.Controller) *QuizScreen {
	s := &QuizScreen{
		ctrl:  ctrl,
		input: components.NewTextInput("답을 입력하세요", 200),
	}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "다시 풀기", Key: "r", Action: emit(retryMsg{})},
		{Label: "새 문제 만들기", Key: "n", Action: emit(newQuizMsg{})},
		{Label: "처음으로", Key: "x", Action: emit(resetMsg{})},
	})
	s.sync()
	return s
}

func emit(msg tea.Msg) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return msg }
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *QuizScreen) Title() string {
	if s.ctrl.Phase() == session.PhaseGraded {
		return "채점 결과"
	}
	return "퀴즈"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.busy:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "종료"}}
	case s.ctrl.Phase() == session.PhaseGraded:
		return []layout.KeyHint{
			{Key: "Tab", Description: "다음 문제"},
			{Key: "↑↓", Description: "메뉴"},
			{Key: "R/N/X", Description: "다시 풀기/새 문제/처음으로"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Tab", Description: "다음 문제"},
			{Key: "Enter", Description: "답 저장"},
			{Key: "Ctrl+S", Description: "채점"},
			{Key: "Ctrl+N", Description: "새 문제"},
			{Key: "Esc", Description: "처음으로"},
		}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		if !s.busy {
			return s, nil
		}
		s.spinner = s.spinner.Advance()
		return s, components.SpinnerTick()

	case newQuizDoneMsg:
		return s.handleNewQuizDone(msg)

	case retryMsg:
		return s.handleRetry()

	case newQuizMsg:
		return s.startNewQuiz()

	case resetMsg:
		return s.handleReset()

	case screen.PhaseMsg:
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.answeringShortAnswer() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}

	switch msg.String() {
	case "tab":
		s.saveShortAnswer()
		s.move(1)
		return s, nil
	case "shift+tab":
		s.saveShortAnswer()
		s.move(-1)
		return s, nil
	}

	if s.ctrl.Phase() == session.PhaseGraded {
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "ctrl+s":
		return s.handleGrade()
	case "ctrl+n":
		s.saveShortAnswer()
		return s.startNewQuiz()
	case "esc":
		return s.handleReset()
	}

	q, ok := s.current()
	if !ok {
		return s, nil
	}
	if q.Kind == quizgen.KindShortAnswer {
		if msg.String() == "enter" {
			s.answer(s.input.Value())
			s.move(1)
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	s.mc, _ = s.mc.Update(msg)
	if s.mc.Chosen() {
		if idx := s.mc.ChosenIndex; idx < len(quizgen.OptionLabels) {
			s.answer(quizgen.OptionLabels[idx])
			s.move(1)
		}
	}
	return s, nil
}

func (s *QuizScreen) handleGrade() (screen.Screen, tea.Cmd) {
	s.saveShortAnswer()
	if _, err := s.ctrl.Grade(context.Background()); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.index = 0
	s.sync()
	return s, nil
}

func (s *QuizScreen) handleRetry() (screen.Screen, tea.Cmd) {
	if err := s.ctrl.Retry(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.index = 0
	s.sync()
	return s, s.input.Init()
}

func (s *QuizScreen) startNewQuiz() (screen.Screen, tea.Cmd) {
	s.busy = true
	s.errMsg = ""
	ctrl := s.ctrl
	return s, tea.Batch(
		func() tea.Msg {
			return newQuizDoneMsg{Err: ctrl.NewQuiz(context.Background())}
		},
		components.SpinnerTick(),
	)
}

func (s *QuizScreen) handleNewQuizDone(msg newQuizDoneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		if s.ctrl.Phase() == session.PhaseIdle {
			// The set is gone; the upload screen shows the error.
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.index = 0
	s.sync()
	return s, s.input.Init()
}

func (s *QuizScreen) handleReset() (screen.Screen, tea.Cmd) {
	if err := s.ctrl.Reset(context.Background()); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, func() tea.Msg { return router.PopToRootMsg{} }
}

// answer records a for the shown question and reports controller errors.
func (s *QuizScreen) answer(a string) {
	if err := s.ctrl.Answer(s.index, a); err != nil {
		s.errMsg = err.Error()
		return
	}
	s.errMsg = ""
}

// saveShortAnswer keeps typed text when leaving a short-answer question.
func (s *QuizScreen) saveShortAnswer() {
	if !s.answeringShortAnswer() {
		return
	}
	if v := s.input.Value(); v != s.ctrl.AnswerAt(s.index) {
		s.answer(v)
	}
}

func (s *QuizScreen) answeringShortAnswer() bool {
	if s.busy || s.ctrl.Phase() != session.PhaseReady {
		return false
	}
	q, ok := s.current()
	return ok && q.Kind == quizgen.KindShortAnswer
}

// move shows the question delta steps away, wrapping around.
func (s *QuizScreen) move(delta int) {
	total := s.ctrl.Total()
	if total == 0 {
		return
	}
	s.index = ((s.index+delta)%total + total) % total
	s.sync()
}

func (s *QuizScreen) current() (quizgen.Question, bool) {
	return s.ctrl.Question(s.index)
}

// sync rebuilds the input widgets for the shown question from the session.
func (s *QuizScreen) sync() {
	snap := s.ctrl.Display()
	if snap.QuestionSet == nil || len(snap.QuestionSet.Questions) == 0 {
		s.index = 0
		return
	}
	if s.index >= len(snap.QuestionSet.Questions) {
		s.index = 0
	}
	q := snap.QuestionSet.Questions[s.index]
	given := snap.Answers[s.index]

	switch q.Kind {
	case quizgen.KindMultipleChoice:
		chosen := quizgen.OptionIndex(given)
		s.mc = components.NewMultiChoice(q.Options, chosen)
		if snap.Graded {
			s.mc = s.mc.Reveal(chosen, quizgen.OptionIndex(q.Answer))
		}
	default:
		s.input = components.NewTextInput("답을 입력하세요", 200)
		s.input.SetValue(given)
		if snap.Graded {
			s.input.Mark(s.index < len(snap.Correct) && snap.Correct[s.index])
		}
	}
}
